package orchestrator

import (
	"sync"
	"time"

	"github.com/requestarr/requestarr/internal/catalog"
)

// PendingAction is the payload attached to a confirmation prompt. It
// lives between "status reported" and confirmation, cancellation,
// expiry or a superseding command.
type PendingAction struct {
	ID        string
	ChatID    int64
	MediaID   int
	MediaType catalog.MediaType
	Title     string
	Year      int
	Seasons   []int
	CreatedAt time.Time
}

// pendingRegister is the single-slot live action register, one slot per
// conversation. Writing a new action atomically supersedes the old one;
// readers must present the action id they were given (compare-and-swap
// contract) rather than trusting that a pending action exists.
type pendingRegister struct {
	mu    sync.Mutex
	slots map[int64]*PendingAction
}

func newPendingRegister() *pendingRegister {
	return &pendingRegister{slots: make(map[int64]*PendingAction)}
}

// replace installs the action as the live one for its conversation,
// superseding any prior value.
func (r *pendingRegister) replace(action *PendingAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[action.ChatID] = action
}

// clear discards the live action for a conversation, if any.
func (r *pendingRegister) clear(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, chatID)
}

// take removes and returns the live action if its id matches. A
// mismatch leaves the slot untouched and reports false.
func (r *pendingRegister) take(chatID int64, actionID string) (*PendingAction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	action, ok := r.slots[chatID]
	if !ok || action.ID != actionID {
		return nil, false
	}
	delete(r.slots, chatID)
	return action, true
}

// expire removes all actions created before the cutoff and returns them.
func (r *pendingRegister) expire(cutoff time.Time) []PendingAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []PendingAction
	for chatID, action := range r.slots {
		if action.CreatedAt.Before(cutoff) {
			expired = append(expired, *action)
			delete(r.slots, chatID)
		}
	}
	return expired
}

// count returns the number of live actions.
func (r *pendingRegister) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
