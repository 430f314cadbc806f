// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single aggregate document for a person or organization on the
// platform. One document per account; profile content, classification, and
// moderation state all live here.
//
// NOTE:
//   - email is unique; phone and google_id are unique when present
//     (sparse unique indexes, see internal/app/system/indexes).
//   - is_profile_complete is derived, not authoritative: it is recomputed by
//     the completion validator when a profile save requests it.
type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Identity
	FullName     string  `bson:"full_name" json:"full_name"`
	FullNameCI   string  `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string  `bson:"email" json:"email"`
	Phone        *string `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`
	GoogleID     *string `bson:"google_id,omitempty" json:"-"`
	AuthProvider string  `bson:"auth_provider" json:"auth_provider"` // email | google
	EmailVerified bool   `bson:"email_verified" json:"email_verified"`

	// Classification
	Category  string  `bson:"category" json:"category"`
	COANumber *string `bson:"coa_number,omitempty" json:"coa_number,omitempty"`

	// Moderation
	Status       string              `bson:"status" json:"status"` // pending | active | rejected | banned
	IsAdmin      bool                `bson:"is_admin" json:"is_admin"`
	ApprovedBy   *primitive.ObjectID `bson:"approved_by,omitempty" json:"-"`
	ApprovedAt   *time.Time          `bson:"approved_at,omitempty" json:"-"`
	RejectedBy   *primitive.ObjectID `bson:"rejected_by,omitempty" json:"-"`
	RejectedAt   *time.Time          `bson:"rejected_at,omitempty" json:"-"`
	RejectReason string              `bson:"reject_reason,omitempty" json:"-"`

	// Profile content
	Headline       string          `bson:"headline,omitempty" json:"headline,omitempty"` // <= 220 chars
	Bio            string          `bson:"bio,omitempty" json:"bio,omitempty"`           // <= 2600 chars
	ProfileImage   string          `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	CoverImage     string          `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	Location       Location        `bson:"location,omitempty" json:"location,omitempty"`
	WorkPreference string          `bson:"work_preference,omitempty" json:"work_preference,omitempty"`
	Projects       []Project       `bson:"projects,omitempty" json:"projects,omitempty"`
	Experience     []Experience    `bson:"experience,omitempty" json:"experience,omitempty"`
	Education      []Education     `bson:"education,omitempty" json:"education,omitempty"`
	Certifications []Certification `bson:"certifications,omitempty" json:"certifications,omitempty"`
	Skills         []string        `bson:"skills,omitempty" json:"skills,omitempty"`
	Gallery        []GalleryItem   `bson:"gallery,omitempty" json:"gallery,omitempty"`
	Services       []string        `bson:"services,omitempty" json:"services,omitempty"`
	Materials      []string        `bson:"materials,omitempty" json:"materials,omitempty"`
	SocialLinks    SocialLinks     `bson:"social_links,omitempty" json:"social_links,omitempty"`
	Badges         []string        `bson:"badges,omitempty" json:"badges,omitempty"`
	IsOpenToWork   bool            `bson:"is_open_to_work" json:"is_open_to_work"`

	// Student-only fields
	CertificatesStatus string `bson:"certificates_status,omitempty" json:"certificates_status,omitempty"` // Pursuing | Completed
	Specialization     string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	ResumeURL          string `bson:"resume_url,omitempty" json:"resume_url,omitempty"`

	// Derived completion flag
	IsProfileComplete bool `bson:"is_profile_complete" json:"is_profile_complete"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Location is the structured location block on a profile.
type Location struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Project is a portfolio project entry.
type Project struct {
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Role        string   `bson:"role,omitempty" json:"role,omitempty"`
	Media       []string `bson:"media,omitempty" json:"media,omitempty"` // media URLs
}

// Experience is a work-history entry.
type Experience struct {
	Title     string     `bson:"title" json:"title"`
	Company   string     `bson:"company,omitempty" json:"company,omitempty"`
	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Current   bool       `bson:"current,omitempty" json:"current,omitempty"`
	Summary   string     `bson:"summary,omitempty" json:"summary,omitempty"`
}

// Education is a study-history entry.
type Education struct {
	School    string `bson:"school" json:"school"`
	Degree    string `bson:"degree,omitempty" json:"degree,omitempty"`
	Field     string `bson:"field,omitempty" json:"field,omitempty"`
	StartYear int    `bson:"start_year,omitempty" json:"start_year,omitempty"`
	EndYear   int    `bson:"end_year,omitempty" json:"end_year,omitempty"`
}

// Certification is a professional certification entry.
type Certification struct {
	Name     string     `bson:"name" json:"name"`
	Issuer   string     `bson:"issuer,omitempty" json:"issuer,omitempty"`
	IssuedAt *time.Time `bson:"issued_at,omitempty" json:"issued_at,omitempty"`
	URL      string     `bson:"url,omitempty" json:"url,omitempty"`
}

// GalleryItem is a single item in the profile gallery.
type GalleryItem struct {
	URL     string `bson:"url" json:"url"`
	Type    string `bson:"type" json:"type"` // image | video
	Caption string `bson:"caption,omitempty" json:"caption,omitempty"`
}

// SocialLinks holds external profile links.
type SocialLinks struct {
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
}

// IsStudent reports whether the user is in the student category.
func (u *User) IsStudent() bool { return u.Category == CategoryStudent }

// IsArchitect reports whether the user is in the architect category.
func (u *User) IsArchitect() bool { return u.Category == CategoryArchitect }
