package models

// ModerationStatus gates third-party visibility of a review.
//
// Transitions:
//
//	(create)      -> pending
//	pending       -> approved | rejected   (moderation desk only)
//	any (on edit) -> pending               (content change)
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanModerateTo reports whether a moderator may move a review from s to next.
// Returning to pending is never a moderator decision; it only happens on edit.
func (s ModerationStatus) CanModerateTo(next ModerationStatus) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}
