// internal/app/system/completion/completion.go

// Package completion is the single authority for "is this profile complete
// for this category". Registration, the verification step, and the profile
// PATCH handler all consult it instead of carrying their own copies of the
// category rules.
package completion

import (
	"fmt"

	"github.com/escos-india/sthapati/internal/domain/models"
)

// Field length limits shared with the patch handler.
const (
	MaxHeadlineLen = 220
	MaxBioLen      = 2600
	MinPhoneLen    = 10
)

// FieldError is one violation: a dotted field path plus a human message,
// shaped for client-side form display.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of evaluating a profile snapshot.
type Result struct {
	Complete bool
	Errors   []FieldError
}

// Evaluate decides whether the user's current field values satisfy the
// role-specific mandatory set, returning every violation found.
//
// Students have their own branch: gallery is not required, but
// certificates_status, specialization, and a resume are. Every other
// category takes the strict path, and architects additionally need a
// format-valid COA number.
func Evaluate(u *models.User) Result {
	var errs []FieldError

	add := func(path, msg string) {
		errs = append(errs, FieldError{Path: path, Message: msg})
	}
	require := func(path, value, msg string) {
		if value == "" {
			add(path, msg)
		}
	}

	// Shared mandatory fields for every category.
	require("profile_image", u.ProfileImage, "Profile image is required")
	require("cover_image", u.CoverImage, "Cover image is required")
	require("headline", u.Headline, "Headline is required")
	require("bio", u.Bio, "Bio is required")
	require("location.city", u.Location.City, "City is required")
	require("location.country", u.Location.Country, "Country is required")
	require("location.address", u.Location.Address, "Address is required")

	if len(u.Headline) > MaxHeadlineLen {
		add("headline", fmt.Sprintf("Headline must be at most %d characters", MaxHeadlineLen))
	}
	if len(u.Bio) > MaxBioLen {
		add("bio", fmt.Sprintf("Bio must be at most %d characters", MaxBioLen))
	}

	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}
	if phone == "" {
		add("phone", "Phone number is required")
	} else if len(phone) < MinPhoneLen {
		add("phone", fmt.Sprintf("Phone number must be at least %d digits", MinPhoneLen))
	}

	if len(u.Projects) == 0 {
		add("projects", "At least one project is required")
	}

	if u.IsStudent() {
		evaluateStudent(u, add)
	} else {
		evaluateStrict(u, add)
	}

	return Result{Complete: len(errs) == 0, Errors: errs}
}

// evaluateStudent adds the student-only requirements. Gallery is explicitly
// not required for students.
func evaluateStudent(u *models.User, add func(path, msg string)) {
	if u.CertificatesStatus == "" {
		add("certificates_status", "Certificates status is required")
	} else if !models.IsValidCertificatesStatus(u.CertificatesStatus) {
		add("certificates_status", `Certificates status must be "Pursuing" or "Completed"`)
	}
	if u.Specialization == "" {
		add("specialization", "Specialization is required")
	}
	if u.ResumeURL == "" {
		add("resume_url", "Resume is required")
	}
}

// evaluateStrict adds the default requirements for non-student categories:
// name and email present, every project carries media, at least one gallery
// item, and a valid COA number for architects.
func evaluateStrict(u *models.User, add func(path, msg string)) {
	if u.FullName == "" {
		add("full_name", "Name is required")
	}
	if u.Email == "" {
		add("email", "Email is required")
	}

	for i, p := range u.Projects {
		if p.Title == "" {
			add(fmt.Sprintf("projects.%d.title", i), "Project title is required")
		}
		if len(p.Media) == 0 {
			add(fmt.Sprintf("projects.%d.media", i), "Each project needs at least one media item")
		}
	}

	if len(u.Gallery) == 0 {
		add("gallery", "At least one gallery item is required")
	}

	if u.IsArchitect() {
		coa := ""
		if u.COANumber != nil {
			coa = *u.COANumber
		}
		if coa == "" {
			add("coa_number", "COA number is required for architects")
		} else if !models.IsValidCOANumber(coa) {
			add("coa_number", "COA number must match the format CA/YYYY/XXXXX")
		}
	}
}

// ShouldDowngrade reports whether a save that did not request completion
// should flip a previously complete profile back to incomplete.
//
// Students never downgrade once complete: their completeness gates fewer
// features and their mandatory set includes re-uploadable artifacts, so
// silently flipping the flag mid-edit was judged hostile. A student asking
// for complete=true still goes through Evaluate like everyone else.
func ShouldDowngrade(u *models.User) bool {
	if !u.IsProfileComplete || u.IsStudent() {
		return false
	}
	return !Evaluate(u).Complete
}
