package bot

import "sync"

// ApprovalStore tracks which chats may request signals. The admin chat is always approved.
type ApprovalStore struct {
	mu       sync.RWMutex
	adminID  int64
	approved map[int64]bool
}

func NewApprovalStore(adminID int64) *ApprovalStore {
	return &ApprovalStore{
		adminID:  adminID,
		approved: map[int64]bool{adminID: true},
	}
}

func (as *ApprovalStore) IsAdmin(chatID int64) bool {
	return chatID == as.adminID
}

func (as *ApprovalStore) Approve(chatID int64) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.approved[chatID] = true
}

func (as *ApprovalStore) IsApproved(chatID int64) bool {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.approved[chatID]
}

func (as *ApprovalStore) Count() int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return len(as.approved)
}
