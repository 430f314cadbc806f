// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnouncementType controls how an announcement is styled by clients.
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementSuccess AnnouncementType = "success"
)

// Announcement is an admin broadcast shown to signed-in users.
// StartsAt/EndsAt bound the active window; nil means unbounded on that side.
type Announcement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	Type        AnnouncementType   `bson:"type" json:"type"`
	Active      bool               `bson:"active" json:"active"`
	Dismissible bool               `bson:"dismissible" json:"dismissible"`
	StartsAt    *time.Time         `bson:"starts_at,omitempty" json:"starts_at,omitempty"`
	EndsAt      *time.Time         `bson:"ends_at,omitempty" json:"ends_at,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// VisibleAt reports whether the announcement should be shown at time t.
func (a *Announcement) VisibleAt(t time.Time) bool {
	if !a.Active {
		return false
	}
	if a.StartsAt != nil && t.Before(*a.StartsAt) {
		return false
	}
	if a.EndsAt != nil && t.After(*a.EndsAt) {
		return false
	}
	return true
}
