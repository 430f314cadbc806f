// internal/domain/models/job.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job posting status values.
const (
	JobOpen   = "open"
	JobClosed = "closed"
)

// Job is a marketplace job posting created by an active user.
type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostedBy    primitive.ObjectID `bson:"posted_by" json:"posted_by"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // target professional category
	Location    Location           `bson:"location,omitempty" json:"location,omitempty"`
	WorkType    string             `bson:"work_type,omitempty" json:"work_type,omitempty"` // onsite | remote | hybrid
	SalaryRange string             `bson:"salary_range,omitempty" json:"salary_range,omitempty"`
	Status      string             `bson:"status" json:"status"` // open | closed
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// JobApplication is one user's application to a job posting.
// ApplicationKey is a UUID handed back to the applicant as a receipt.
type JobApplication struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID          primitive.ObjectID `bson:"job_id" json:"job_id"`
	ApplicantID    primitive.ObjectID `bson:"applicant_id" json:"applicant_id"`
	ApplicationKey string             `bson:"application_key" json:"application_key"`
	CoverNote      string             `bson:"cover_note,omitempty" json:"cover_note,omitempty"`
	ResumeURL      string             `bson:"resume_url,omitempty" json:"resume_url,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
