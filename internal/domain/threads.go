package domain

import (
	"context"

	svcErr "github.com/oggyb/cardswap/internal/errors"
)

// ThreadUniqueness guarantees at most one thread per unordered user pair.
// Threads are stored with normalized participants, so every lookup here is
// direction independent.
type ThreadUniqueness struct {
	threads  ThreadRepository
	requests MessageRequestRepository
}

func NewThreadUniqueness(threads ThreadRepository, requests MessageRequestRepository) ThreadUniqueness {
	return ThreadUniqueness{threads: threads, requests: requests}
}

// FindOrGetPendingRequest returns the existing thread if there is one,
// otherwise the pending request between the pair in either direction,
// otherwise neither.
func (u ThreadUniqueness) FindOrGetPendingRequest(ctx context.Context, x, y string) (*MessageThread, *MessageRequest, error) {
	thread, err := u.threads.FindByPair(ctx, x, y)
	if err != nil {
		return nil, nil, err
	}
	if thread != nil {
		return thread, nil, nil
	}
	req, err := u.requests.FindPendingBetween(ctx, x, y)
	if err != nil {
		return nil, nil, err
	}
	return nil, req, nil
}

// CanCreateNewRequest is true iff neither a thread nor a pending request exists.
func (u ThreadUniqueness) CanCreateNewRequest(ctx context.Context, senderID, recipientID string) (bool, error) {
	thread, req, err := u.FindOrGetPendingRequest(ctx, senderID, recipientID)
	if err != nil {
		return false, err
	}
	return thread == nil && req == nil, nil
}

// GetOrFail returns the pair's thread. Threads are only created by accepting
// a message request, so a missing thread is NotFound.
func (u ThreadUniqueness) GetOrFail(ctx context.Context, x, y string) (MessageThread, error) {
	thread, err := u.threads.FindByPair(ctx, x, y)
	if err != nil {
		return MessageThread{}, err
	}
	if thread == nil {
		return MessageThread{}, svcErr.NotFound("no conversation with this user")
	}
	return *thread, nil
}
