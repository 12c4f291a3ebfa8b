package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is stored directionally: UserID asked FriendID, or UserID blocked FriendID.
type Friendship struct {
	ID        string
	UserID    string
	FriendID  string
	Status    FriendshipStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewFriendRequest(userID, friendID string) (Friendship, error) {
	return newFriendship(userID, friendID, FriendshipPending)
}

func NewBlock(blockerID, blockedID string) (Friendship, error) {
	return newFriendship(blockerID, blockedID, FriendshipBlocked)
}

func newFriendship(userID, friendID string, status FriendshipStatus) (Friendship, error) {
	if userID == "" || friendID == "" {
		return Friendship{}, svcErr.Validation("user_id and friend_id are required")
	}
	if userID == friendID {
		return Friendship{}, svcErr.Validation("cannot befriend or block yourself")
	}
	return Friendship{ID: uuid.NewString(), UserID: userID, FriendID: friendID, Status: status}, nil
}

// Accept is only valid for the addressee of a pending request.
func (f *Friendship) Accept(userID string) error {
	if userID != f.FriendID {
		return svcErr.Forbidden("only the addressee can accept a friend request")
	}
	if f.Status != FriendshipPending {
		return svcErr.InvalidState("friend request is not pending")
	}
	f.Status = FriendshipAccepted
	return nil
}

func (f *Friendship) Involves(userID string) bool {
	return userID == f.UserID || userID == f.FriendID
}

// Rating is a 1..5 score one user gives another, optionally tied to a trade.
type Rating struct {
	ID          string
	RaterID     string
	RatedUserID string
	Score       int
	TradeID     *string
	Comment     string
	CreatedAt   time.Time
}

const maxRatingComment = 1000

func NewRating(raterID, ratedUserID string, score int, tradeID *string, comment string) (Rating, error) {
	if raterID == "" || ratedUserID == "" {
		return Rating{}, svcErr.Validation("rater_id and rated_user_id are required")
	}
	if raterID == ratedUserID {
		return Rating{}, svcErr.Validation("cannot rate yourself")
	}
	if score < 1 || score > 5 {
		return Rating{}, svcErr.Validation("score must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxRatingComment {
		return Rating{}, svcErr.Validationf("comment must be at most %d characters", maxRatingComment)
	}
	if tradeID != nil && *tradeID == "" {
		tradeID = nil
	}
	return Rating{
		ID:          uuid.NewString(),
		RaterID:     raterID,
		RatedUserID: ratedUserID,
		Score:       score,
		TradeID:     tradeID,
		Comment:     comment,
	}, nil
}

type ReportTarget string

const (
	ReportUser ReportTarget = "user"
	ReportPost ReportTarget = "post"
	ReportCard ReportTarget = "card"
)

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

// Report flags a user, post or card for moderation.
type Report struct {
	ID         string
	ReporterID string
	TargetType ReportTarget
	TargetID   string
	Reason     string
	Status     ReportStatus
	CreatedAt  time.Time
}

const maxReportReason = 1000

func NewReport(reporterID string, targetType ReportTarget, targetID, reason string) (Report, error) {
	switch targetType {
	case ReportUser, ReportPost, ReportCard:
	default:
		return Report{}, svcErr.Validation("target_type must be user, post or card")
	}
	if reporterID == "" || targetID == "" {
		return Report{}, svcErr.Validation("reporter_id and target_id are required")
	}
	if targetType == ReportUser && targetID == reporterID {
		return Report{}, svcErr.Validation("cannot report yourself")
	}
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n == 0 || n > maxReportReason {
		return Report{}, svcErr.Validationf("reason must be 1..%d characters", maxReportReason)
	}
	return Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Status:     ReportOpen,
	}, nil
}

// AreFriends reports whether the rows hold an accepted friendship and no block.
func AreFriends(rows []Friendship) bool {
	if AnyBlocked(rows) {
		return false
	}
	for _, f := range rows {
		if f.Status == FriendshipAccepted {
			return true
		}
	}
	return false
}

// AnyBlocked reports whether any of the rows is a block, in either direction.
func AnyBlocked(rows []Friendship) bool {
	for _, f := range rows {
		if f.Status == FriendshipBlocked {
			return true
		}
	}
	return false
}
