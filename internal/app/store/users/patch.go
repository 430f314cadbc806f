// internal/app/store/users/patch.go
package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/escos-india/sthapati/internal/app/system/htmlsanitize"
	"github.com/escos-india/sthapati/internal/app/system/normalize"
	"github.com/escos-india/sthapati/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfilePatch is the typed partial update accepted by the profile save
// endpoint. Nil means "leave unchanged"; a present field (including an empty
// string or empty slice) overwrites the stored value. Last write wins.
type ProfilePatch struct {
	FullName       *string                `json:"full_name,omitempty"`
	Phone          *string                `json:"phone,omitempty"`
	Category       *string                `json:"category,omitempty"`
	COANumber      *string                `json:"coa_number,omitempty"`
	Headline       *string                `json:"headline,omitempty"`
	Bio            *string                `json:"bio,omitempty"`
	ProfileImage   *string                `json:"profile_image,omitempty"`
	CoverImage     *string                `json:"cover_image,omitempty"`
	Location       *models.Location       `json:"location,omitempty"`
	WorkPreference *string                `json:"work_preference,omitempty"`
	Projects       *[]models.Project      `json:"projects,omitempty"`
	Experience     *[]models.Experience   `json:"experience,omitempty"`
	Education      *[]models.Education    `json:"education,omitempty"`
	Certifications *[]models.Certification `json:"certifications,omitempty"`
	Skills         *[]string              `json:"skills,omitempty"`
	Gallery        *[]models.GalleryItem  `json:"gallery,omitempty"`
	Services       *[]string              `json:"services,omitempty"`
	Materials      *[]string              `json:"materials,omitempty"`
	SocialLinks    *models.SocialLinks    `json:"social_links,omitempty"`
	IsOpenToWork   *bool                  `json:"is_open_to_work,omitempty"`

	// Student-only fields; ignored for other categories at validation time.
	CertificatesStatus *string `json:"certificates_status,omitempty"`
	Specialization     *string `json:"specialization,omitempty"`
	ResumeURL          *string `json:"resume_url,omitempty"`
}

// Clean trims and sanitizes the text fields in place. Bio keeps limited
// rich-text markup; everything else is reduced to plain text.
func (p *ProfilePatch) Clean() {
	plain := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(htmlsanitize.PlainText(*s))
		}
	}
	plain(p.FullName)
	plain(p.Headline)
	plain(p.WorkPreference)
	plain(p.Specialization)
	plain(p.ResumeURL)
	plain(p.ProfileImage)
	plain(p.CoverImage)

	if p.Bio != nil {
		*p.Bio = strings.TrimSpace(htmlsanitize.Sanitize(*p.Bio))
	}
	if p.Phone != nil {
		*p.Phone = normalize.Phone(*p.Phone)
	}
	if p.Category != nil {
		*p.Category = normalize.Category(*p.Category)
	}
	if p.COANumber != nil {
		*p.COANumber = normalize.COANumber(*p.COANumber)
	}
	if p.CertificatesStatus != nil {
		*p.CertificatesStatus = strings.TrimSpace(*p.CertificatesStatus)
	}
	if p.Location != nil {
		p.Location.City = strings.TrimSpace(htmlsanitize.PlainText(p.Location.City))
		p.Location.State = strings.TrimSpace(htmlsanitize.PlainText(p.Location.State))
		p.Location.Country = strings.TrimSpace(htmlsanitize.PlainText(p.Location.Country))
		p.Location.Address = strings.TrimSpace(htmlsanitize.PlainText(p.Location.Address))
	}
	if p.Projects != nil {
		for i := range *p.Projects {
			(*p.Projects)[i].Title = strings.TrimSpace(htmlsanitize.PlainText((*p.Projects)[i].Title))
			(*p.Projects)[i].Description = strings.TrimSpace(htmlsanitize.Sanitize((*p.Projects)[i].Description))
			(*p.Projects)[i].Role = strings.TrimSpace(htmlsanitize.PlainText((*p.Projects)[i].Role))
		}
	}
	if p.Gallery != nil {
		for i := range *p.Gallery {
			(*p.Gallery)[i].Caption = strings.TrimSpace(htmlsanitize.PlainText((*p.Gallery)[i].Caption))
		}
	}
}

// ApplyTo overlays the patch onto a copy of u and returns the result. The
// copy is what the completion validator sees before anything is persisted.
func (p *ProfilePatch) ApplyTo(u models.User) models.User {
	if p.FullName != nil {
		u.FullName = normalize.Name(*p.FullName)
		u.FullNameCI = text.Fold(u.FullName)
	}
	if p.Phone != nil {
		if *p.Phone == "" {
			u.Phone = nil
		} else {
			u.Phone = p.Phone
		}
	}
	if p.Category != nil {
		// Switching into the architect category re-enters the admin
		// review queue; all other switches keep the current status.
		if *p.Category != u.Category && *p.Category == models.CategoryArchitect {
			u.Status = models.StatusPending
		}
		u.Category = *p.Category
	}
	if p.COANumber != nil {
		if *p.COANumber == "" {
			u.COANumber = nil
		} else {
			u.COANumber = p.COANumber
		}
	}
	if p.Headline != nil {
		u.Headline = *p.Headline
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	if p.CoverImage != nil {
		u.CoverImage = *p.CoverImage
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.WorkPreference != nil {
		u.WorkPreference = *p.WorkPreference
	}
	if p.Projects != nil {
		u.Projects = *p.Projects
	}
	if p.Experience != nil {
		u.Experience = *p.Experience
	}
	if p.Education != nil {
		u.Education = *p.Education
	}
	if p.Certifications != nil {
		u.Certifications = *p.Certifications
	}
	if p.Skills != nil {
		u.Skills = *p.Skills
	}
	if p.Gallery != nil {
		u.Gallery = *p.Gallery
	}
	if p.Services != nil {
		u.Services = *p.Services
	}
	if p.Materials != nil {
		u.Materials = *p.Materials
	}
	if p.SocialLinks != nil {
		u.SocialLinks = *p.SocialLinks
	}
	if p.IsOpenToWork != nil {
		u.IsOpenToWork = *p.IsOpenToWork
	}
	if p.CertificatesStatus != nil {
		u.CertificatesStatus = *p.CertificatesStatus
	}
	if p.Specialization != nil {
		u.Specialization = *p.Specialization
	}
	if p.ResumeURL != nil {
		u.ResumeURL = *p.ResumeURL
	}
	return u
}

// CheckCategory validates a requested category change against the patched
// document. The COA gate from registration applies here too: an account
// cannot become an architect without a format-valid license number.
func (p *ProfilePatch) CheckCategory(applied models.User) error {
	if p.Category == nil {
		return nil
	}
	if !models.IsValidCategory(applied.Category) {
		return errBadCategory
	}
	if applied.Category == models.CategoryArchitect {
		if applied.COANumber == nil || *applied.COANumber == "" {
			return errCOANeeded
		}
		if !models.IsValidCOANumber(*applied.COANumber) {
			return errBadCOA
		}
	}
	return nil
}

// setDoc builds the $set document containing only the provided fields.
func (p *ProfilePatch) setDoc(applied models.User) bson.M {
	set := bson.M{"updated_at": time.Now()}

	if p.FullName != nil {
		set["full_name"] = applied.FullName
		set["full_name_ci"] = applied.FullNameCI
	}
	if p.Phone != nil && applied.Phone != nil {
		set["phone"] = applied.Phone
	}
	if p.Category != nil {
		set["category"] = applied.Category
		set["status"] = applied.Status
	}
	if p.COANumber != nil && applied.COANumber != nil {
		set["coa_number"] = applied.COANumber
	}
	if p.Headline != nil {
		set["headline"] = applied.Headline
	}
	if p.Bio != nil {
		set["bio"] = applied.Bio
	}
	if p.ProfileImage != nil {
		set["profile_image"] = applied.ProfileImage
	}
	if p.CoverImage != nil {
		set["cover_image"] = applied.CoverImage
	}
	if p.Location != nil {
		set["location"] = applied.Location
	}
	if p.WorkPreference != nil {
		set["work_preference"] = applied.WorkPreference
	}
	if p.Projects != nil {
		set["projects"] = applied.Projects
	}
	if p.Experience != nil {
		set["experience"] = applied.Experience
	}
	if p.Education != nil {
		set["education"] = applied.Education
	}
	if p.Certifications != nil {
		set["certifications"] = applied.Certifications
	}
	if p.Skills != nil {
		set["skills"] = applied.Skills
	}
	if p.Gallery != nil {
		set["gallery"] = applied.Gallery
	}
	if p.Services != nil {
		set["services"] = applied.Services
	}
	if p.Materials != nil {
		set["materials"] = applied.Materials
	}
	if p.SocialLinks != nil {
		set["social_links"] = applied.SocialLinks
	}
	if p.IsOpenToWork != nil {
		set["is_open_to_work"] = applied.IsOpenToWork
	}
	if p.CertificatesStatus != nil {
		set["certificates_status"] = applied.CertificatesStatus
	}
	if p.Specialization != nil {
		set["specialization"] = applied.Specialization
	}
	if p.ResumeURL != nil {
		set["resume_url"] = applied.ResumeURL
	}
	return set
}

// SavePatch persists the patched fields plus the resolved completion flag.
// applied must be the result of p.ApplyTo on the current document.
func (s *Store) SavePatch(ctx context.Context, id primitive.ObjectID, p *ProfilePatch, applied models.User, complete bool) error {
	set := p.setDoc(applied)
	set["is_profile_complete"] = complete

	update := bson.M{"$set": set}
	unset := bson.M{}
	if p.Phone != nil && applied.Phone == nil {
		// Removing the field keeps the sparse unique phone index happy;
		// a stored null would still collide with other nulls.
		unset["phone"] = ""
	}
	if p.COANumber != nil && applied.COANumber == nil {
		unset["coa_number"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	_, err := s.c.UpdateByID(ctx, id, update)
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicatePhone
	}
	return err
}
