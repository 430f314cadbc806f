// internal/domain/models/status.go
package models

// Moderation status values. A user's status controls whether they may sign in
// and appear in the directory.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
	StatusBanned   = "banned"
)

// AllStatuses lists every moderation status.
var AllStatuses = []string{StatusPending, StatusActive, StatusRejected, StatusBanned}

// IsValidStatus checks if a value is a valid moderation status.
func IsValidStatus(value string) bool {
	for _, s := range AllStatuses {
		if s == value {
			return true
		}
	}
	return false
}
