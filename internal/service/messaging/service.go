package messaging

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/app"
	"github.com/oggyb/cardswap/internal/domain"
	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Service implements message requests and threads. A thread between two
// users only exists after one of them accepted the other's request.
type Service struct {
	appCtx *app.AppContext
	now    func() time.Time
}

func NewMessagingService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest opens first contact with recipientID.
//
// Behavior:
//   - Recipient must exist and neither user may have blocked the other.
//   - Fails with Conflict while a thread or a pending request exists for the
//     pair, in either direction.
//   - A declined request does not prevent a new one.
func (s *Service) SendRequest(ctx context.Context, senderID, recipientID, message string) (domain.MessageRequest, error) {
	s.appCtx.Log(ctx).Debug("SendRequest called", "sender", senderID, "recipient", recipientID)

	req, err := domain.NewMessageRequest(senderID, recipientID, message)
	if err != nil {
		return domain.MessageRequest{}, err
	}

	err = s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		if _, err := r.Users.GetByID(ctx, recipientID); err != nil {
			return err
		}
		if err := requireNotBlocked(ctx, r, senderID, recipientID); err != nil {
			return err
		}
		ok, err := domain.NewThreadUniqueness(r.Threads, r.Requests).CanCreateNewRequest(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.Conflict("a conversation or pending request already exists with this user")
		}
		return r.Requests.Create(ctx, req)
	})
	if err != nil {
		return domain.MessageRequest{}, s.fail(ctx, "SendRequest", err, "user not found")
	}
	return req, nil
}

// AcceptRequest creates the pair's thread (or reuses an existing one), posts
// the request text as its first message and links the request to it. A block
// placed after the request arrived makes it unacceptable (Forbidden).
func (s *Service) AcceptRequest(ctx context.Context, requestID, userID string) (domain.MessageThread, error) {
	s.appCtx.Log(ctx).Debug("AcceptRequest called", "request_id", requestID, "user", userID)

	now := s.now()
	var out domain.MessageThread
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		req, err := r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.RecipientID != userID {
			return svcErr.Forbidden("only the recipient can accept a message request")
		}
		if req.Status != domain.RequestPending {
			return svcErr.InvalidState("message request is no longer pending")
		}
		if err := requireNotBlocked(ctx, r, req.SenderID, req.RecipientID); err != nil {
			return err
		}

		thread, err := r.Threads.FindByPair(ctx, req.SenderID, req.RecipientID)
		if err != nil {
			return err
		}
		if thread == nil {
			t, err := domain.NewMessageThread(req.SenderID, req.RecipientID)
			if err != nil {
				return err
			}
			if err := r.Threads.Create(ctx, t); err != nil {
				return err
			}
			thread = &t
		}

		if err := req.Accept(userID, thread.ID, now); err != nil {
			return err
		}
		if err := r.Requests.Update(ctx, req); err != nil {
			return err
		}

		first, err := domain.NewThreadMessage(thread.ID, req.SenderID, req.Message)
		if err != nil {
			return err
		}
		saved, err := r.Threads.AppendMessage(ctx, first)
		if err != nil {
			return err
		}
		if err := r.Threads.Touch(ctx, thread.ID, saved.CreatedAt); err != nil {
			return err
		}
		thread.LastMessageAt = &saved.CreatedAt
		out = *thread
		return nil
	})
	if err != nil {
		// the unique pair index turns a concurrent accept into a duplicate key
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.MessageThread{}, svcErr.Conflict("conversation already exists")
		}
		return domain.MessageThread{}, s.fail(ctx, "AcceptRequest", err, "message request not found")
	}

	s.appCtx.Log(ctx).Info("message request accepted", "request_id", requestID, "thread_id", out.ID)
	return out, nil
}

// DeclineRequest closes a pending request without creating a thread.
func (s *Service) DeclineRequest(ctx context.Context, requestID, userID string) (domain.MessageRequest, error) {
	var out domain.MessageRequest
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		req, err := r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := req.Decline(userID, s.now()); err != nil {
			return err
		}
		out = req
		return r.Requests.Update(ctx, req)
	})
	if err != nil {
		return domain.MessageRequest{}, s.fail(ctx, "DeclineRequest", err, "message request not found")
	}
	return out, nil
}

// ListIncomingRequests returns pending requests addressed to userID.
func (s *Service) ListIncomingRequests(ctx context.Context, userID string, limit int) ([]domain.MessageRequest, error) {
	reqs, err := s.appCtx.Store.Repos().Requests.ListPendingFor(ctx, userID, pagination.ClampLimit(limit))
	if err != nil {
		return nil, s.fail(ctx, "ListIncomingRequests", err, "")
	}
	return reqs, nil
}

// SendMessage posts to the existing thread between senderID and recipientID.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID, body string) (domain.ThreadMessage, error) {
	s.appCtx.Log(ctx).Debug("SendMessage called", "sender", senderID, "recipient", recipientID)

	var out domain.ThreadMessage
	err := s.appCtx.Store.Atomic(ctx, func(r domain.Repositories) error {
		thread, err := domain.NewThreadUniqueness(r.Threads, r.Requests).GetOrFail(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		if !thread.HasParticipant(senderID) {
			return svcErr.Forbidden("not a participant of this conversation")
		}
		if err := requireNotBlocked(ctx, r, senderID, recipientID); err != nil {
			return err
		}
		msg, err := domain.NewThreadMessage(thread.ID, senderID, body)
		if err != nil {
			return err
		}
		saved, err := r.Threads.AppendMessage(ctx, msg)
		if err != nil {
			return err
		}
		out = saved
		return r.Threads.Touch(ctx, thread.ID, saved.CreatedAt)
	})
	if err != nil {
		return domain.ThreadMessage{}, s.fail(ctx, "SendMessage", err, "conversation not found")
	}
	return out, nil
}

// ListThreads returns the caller's conversations, most recently active first.
func (s *Service) ListThreads(ctx context.Context, userID string, limit int) ([]domain.MessageThread, error) {
	threads, err := s.appCtx.Store.Repos().Threads.ListForUser(ctx, userID, pagination.ClampLimit(limit))
	if err != nil {
		return nil, s.fail(ctx, "ListThreads", err, "")
	}
	return threads, nil
}

// ListMessages pages through a thread, newest first. Participants only.
func (s *Service) ListMessages(ctx context.Context, threadID, userID string, token *string, limit int) ([]domain.ThreadMessage, *string, error) {
	repos := s.appCtx.Store.Repos()
	thread, err := repos.Threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, nil, s.fail(ctx, "ListMessages", err, "conversation not found")
	}
	if !thread.HasParticipant(userID) {
		return nil, nil, svcErr.NotFound("conversation not found")
	}
	msgs, next, err := repos.Threads.ListMessages(ctx, threadID, token, pagination.ClampLimit(limit))
	if err != nil {
		return nil, nil, s.fail(ctx, "ListMessages", err, "conversation not found")
	}
	return msgs, next, nil
}

func requireNotBlocked(ctx context.Context, r domain.Repositories, x, y string) error {
	rows, err := r.Friendships.FindBetween(ctx, x, y)
	if err != nil {
		return err
	}
	if domain.AnyBlocked(rows) {
		return svcErr.Forbidden("cannot message this user")
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if e, ok := svcErr.As(err); !ok || e.Kind == svcErr.KindInternal {
		s.appCtx.Log(ctx).Error(op+" failed", "err", err)
	}
	return svcErr.Wrap(err, notFoundMsg)
}
