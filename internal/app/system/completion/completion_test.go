package completion

import (
	"testing"

	"github.com/escos-india/sthapati/internal/domain/models"
)

func strptr(s string) *string { return &s }

// completeContractor returns a profile that satisfies the strict branch.
func completeContractor() *models.User {
	return &models.User{
		FullName:     "Ravi Sharma",
		Email:        "ravi@example.com",
		Phone:        strptr("9876543210"),
		Category:     models.CategoryContractor,
		Headline:     "Civil contractor, 12 years",
		Bio:          "Residential and commercial construction across Pune.",
		ProfileImage: "https://cdn.example.com/p/ravi.jpg",
		CoverImage:   "https://cdn.example.com/c/ravi.jpg",
		Location: models.Location{
			City:    "Pune",
			Country: "India",
			Address: "14 FC Road",
		},
		Projects: []models.Project{
			{Title: "Hillside Villas", Description: "24-unit development", Role: "Lead contractor",
				Media: []string{"https://cdn.example.com/m/1.jpg"}},
		},
		Gallery: []models.GalleryItem{
			{URL: "https://cdn.example.com/g/1.jpg", Type: "image"},
		},
	}
}

// completeStudent returns a profile that satisfies the student branch.
func completeStudent() *models.User {
	u := completeContractor()
	u.Category = models.CategoryStudent
	u.Gallery = nil // not required for students
	u.CertificatesStatus = models.CertificatesPursuing
	u.Specialization = "Landscape architecture"
	u.ResumeURL = "https://cdn.example.com/r/ravi.pdf"
	return u
}

func hasPath(errs []FieldError, path string) bool {
	for _, e := range errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestEvaluate_CompleteProfiles(t *testing.T) {
	for _, tt := range []struct {
		name string
		user *models.User
	}{
		{"contractor", completeContractor()},
		{"student", completeStudent()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.user)
			if !res.Complete {
				t.Fatalf("expected complete, got violations: %v", res.Errors)
			}
			if len(res.Errors) != 0 {
				t.Errorf("expected no errors, got %v", res.Errors)
			}
		})
	}
}

func TestEvaluate_StrictMissingField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.User)
		path   string
	}{
		{"missing image", func(u *models.User) { u.ProfileImage = "" }, "profile_image"},
		{"missing cover", func(u *models.User) { u.CoverImage = "" }, "cover_image"},
		{"missing headline", func(u *models.User) { u.Headline = "" }, "headline"},
		{"missing bio", func(u *models.User) { u.Bio = "" }, "bio"},
		{"missing phone", func(u *models.User) { u.Phone = nil }, "phone"},
		{"short phone", func(u *models.User) { u.Phone = strptr("12345") }, "phone"},
		{"missing city", func(u *models.User) { u.Location.City = "" }, "location.city"},
		{"missing country", func(u *models.User) { u.Location.Country = "" }, "location.country"},
		{"missing address", func(u *models.User) { u.Location.Address = "" }, "location.address"},
		{"no projects", func(u *models.User) { u.Projects = nil }, "projects"},
		{"project without media", func(u *models.User) { u.Projects[0].Media = nil }, "projects.0.media"},
		{"no gallery", func(u *models.User) { u.Gallery = nil }, "gallery"},
		{"missing name", func(u *models.User) { u.FullName = "" }, "full_name"},
		{"missing email", func(u *models.User) { u.Email = "" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := completeContractor()
			tt.mutate(u)
			res := Evaluate(u)
			if res.Complete {
				t.Fatal("expected incomplete")
			}
			if !hasPath(res.Errors, tt.path) {
				t.Errorf("expected violation at %q, got %v", tt.path, res.Errors)
			}
		})
	}
}

func TestEvaluate_StudentBranch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.User)
		path   string
	}{
		{"missing certificates status", func(u *models.User) { u.CertificatesStatus = "" }, "certificates_status"},
		{"bad certificates status", func(u *models.User) { u.CertificatesStatus = "Done" }, "certificates_status"},
		{"missing specialization", func(u *models.User) { u.Specialization = "" }, "specialization"},
		{"missing resume", func(u *models.User) { u.ResumeURL = "" }, "resume_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := completeStudent()
			tt.mutate(u)
			res := Evaluate(u)
			if res.Complete {
				t.Fatal("expected incomplete")
			}
			if !hasPath(res.Errors, tt.path) {
				t.Errorf("expected violation at %q, got %v", tt.path, res.Errors)
			}
		})
	}

	t.Run("gallery not required", func(t *testing.T) {
		u := completeStudent()
		u.Gallery = nil
		if res := Evaluate(u); !res.Complete {
			t.Errorf("students should not need gallery items, got %v", res.Errors)
		}
	})
}

func TestEvaluate_ArchitectCOA(t *testing.T) {
	tests := []struct {
		coa  string
		want bool
	}{
		{"CA/2020/12345", true},
		{"CA/20/12345", false},
		{"ca/2020/12345", false},
		{"CA/2020/1234", false},
		{"CA/2020/123456", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.coa, func(t *testing.T) {
			u := completeContractor()
			u.Category = models.CategoryArchitect
			if tt.coa != "" {
				u.COANumber = strptr(tt.coa)
			}
			res := Evaluate(u)
			if res.Complete != tt.want {
				t.Errorf("Evaluate with coa %q: complete=%v, want %v (errors: %v)",
					tt.coa, res.Complete, tt.want, res.Errors)
			}
			if !tt.want && !hasPath(res.Errors, "coa_number") {
				t.Errorf("expected coa_number violation, got %v", res.Errors)
			}
		})
	}
}

func TestEvaluate_LengthLimits(t *testing.T) {
	t.Run("headline too long", func(t *testing.T) {
		u := completeContractor()
		u.Headline = string(make([]byte, MaxHeadlineLen+1))
		if res := Evaluate(u); res.Complete || !hasPath(res.Errors, "headline") {
			t.Errorf("expected headline length violation, got %v", res.Errors)
		}
	})
	t.Run("bio too long", func(t *testing.T) {
		u := completeContractor()
		u.Bio = string(make([]byte, MaxBioLen+1))
		if res := Evaluate(u); res.Complete || !hasPath(res.Errors, "bio") {
			t.Errorf("expected bio length violation, got %v", res.Errors)
		}
	})
}

func TestShouldDowngrade(t *testing.T) {
	t.Run("complete profile losing bio downgrades", func(t *testing.T) {
		u := completeContractor()
		u.IsProfileComplete = true
		u.Bio = ""
		if !ShouldDowngrade(u) {
			t.Error("expected downgrade after bio removal")
		}
	})

	t.Run("still-valid profile keeps flag", func(t *testing.T) {
		u := completeContractor()
		u.IsProfileComplete = true
		if ShouldDowngrade(u) {
			t.Error("unexpected downgrade for valid profile")
		}
	})

	t.Run("never-complete profile has nothing to downgrade", func(t *testing.T) {
		u := completeContractor()
		u.Bio = ""
		if ShouldDowngrade(u) {
			t.Error("incomplete profiles cannot downgrade")
		}
	})

	t.Run("students never downgrade", func(t *testing.T) {
		u := completeStudent()
		u.IsProfileComplete = true
		u.ResumeURL = ""
		if ShouldDowngrade(u) {
			t.Error("students keep the complete flag on edit")
		}
	})
}
