package profileapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/escos-india/sthapati/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestGetProfileUnauthorized(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/user/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateProfileUnauthorized(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/user/profile",
		bytes.NewBufferString(`{"headline":"x"}`))
	h.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// completeContractor builds a user document that passes the completion
// validator for non-student categories.
func completeContractor(email string) models.User {
	now := time.Now().UTC()
	phone := "9876543210"
	return models.User{
		ID:            primitive.NewObjectID(),
		FullName:      "Ravi Builder",
		FullNameCI:    text.Fold("Ravi Builder"),
		Email:         email,
		Phone:         &phone,
		AuthProvider:  models.AuthProviderEmail,
		EmailVerified: true,
		Category:      models.CategoryContractor,
		Status:        models.StatusActive,
		Headline:      "Residential contractor",
		Bio:           "Twenty years of residential construction.",
		ProfileImage:  "https://cdn.example.com/p.jpg",
		CoverImage:    "https://cdn.example.com/c.jpg",
		Location: models.Location{
			City:    "Pune",
			Country: "India",
			Address: "12 MG Road",
		},
		Projects: []models.Project{
			{Title: "Lakeside Villas", Media: []string{"https://cdn.example.com/m1.jpg"}},
		},
		Gallery: []models.GalleryItem{
			{URL: "https://cdn.example.com/g1.jpg", Type: "image"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func patchRequest(t *testing.T, u models.User, body interface{}) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/user/profile", bytes.NewBuffer(raw))
	req = testutil.SignedInRequest(req, u)
	return httptest.NewRecorder(), req
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	h := NewHandler(db, zap.NewNop())

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		u := completeContractor("partial@example.com")
		u.IsProfileComplete = false
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"headline": "New headline"})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Success bool `json:"success"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if !body.Success {
			t.Error("success = false on a saved patch")
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Headline != "New headline" {
			t.Errorf("headline = %q", stored.Headline)
		}
		if stored.Bio != u.Bio {
			t.Errorf("bio changed: %q", stored.Bio)
		}
	})

	t.Run("complete request validates the patched document", func(t *testing.T) {
		u := completeContractor("complete@example.com")
		u.Headline = "" // incomplete as stored
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		// Patch supplies the missing headline, so validation passes.
		rec, req := patchRequest(t, u, map[string]interface{}{
			"headline": "Now present",
			"complete": true,
		})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !stored.IsProfileComplete {
			t.Error("is_profile_complete = false after successful completion")
		}
	})

	t.Run("incomplete profile fails completion with details", func(t *testing.T) {
		u := completeContractor("incomplete@example.com")
		u.ProfileImage = ""
		u.Projects = nil
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"complete": true})
		h.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var body struct {
			Error   string `json:"error"`
			Details []struct {
				Path    string `json:"path"`
				Message string `json:"message"`
			} `json:"details"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body not JSON: %v", err)
		}
		if len(body.Details) == 0 {
			t.Fatal("no field details in 400 response")
		}
		paths := map[string]bool{}
		for _, d := range body.Details {
			paths[d.Path] = true
		}
		if !paths["profile_image"] || !paths["projects"] {
			t.Errorf("details missing expected paths: %v", paths)
		}

		// Nothing was saved.
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.IsProfileComplete {
			t.Error("profile marked complete despite failed validation")
		}
	})

	t.Run("breaking edit downgrades a complete profile", func(t *testing.T) {
		u := completeContractor("downgrade@example.com")
		u.IsProfileComplete = true
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"bio": ""})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Success    bool `json:"success"`
			Complete   bool `json:"complete"`
			Downgraded bool `json:"downgraded"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if !body.Success {
			t.Error("success = false on a saved patch")
		}
		if body.Complete || !body.Downgraded {
			t.Errorf("complete=%v downgraded=%v, want downgrade", body.Complete, body.Downgraded)
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.IsProfileComplete {
			t.Error("is_profile_complete still true after breaking edit")
		}
	})

	t.Run("student keeps the complete flag on a breaking edit", func(t *testing.T) {
		u := completeContractor("student@example.com")
		u.Category = models.CategoryStudent
		u.Gallery = nil
		u.CertificatesStatus = models.CertificatesPursuing
		u.Specialization = "Urban design"
		u.ResumeURL = "https://cdn.example.com/resume.pdf"
		u.IsProfileComplete = true
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"bio": ""})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !stored.IsProfileComplete {
			t.Error("student profile was downgraded")
		}
	})

	t.Run("switching to architect re-enters the review queue", func(t *testing.T) {
		u := completeContractor("newarchitect@example.com")
		u.Category = models.CategoryTradePro
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{
			"category":   "architect",
			"coa_number": "CA/2021/00042",
		})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Category != models.CategoryArchitect {
			t.Errorf("category = %q", stored.Category)
		}
		if stored.Status != models.StatusPending {
			t.Errorf("status = %q, want pending after switching to architect", stored.Status)
		}
		if stored.COANumber == nil || *stored.COANumber != "CA/2021/00042" {
			t.Errorf("coa_number = %v", stored.COANumber)
		}
	})

	t.Run("switching to architect without a coa is rejected", func(t *testing.T) {
		u := completeContractor("nocoa@example.com")
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"category": "architect"})
		h.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Category != models.CategoryContractor {
			t.Errorf("category changed to %q despite rejection", stored.Category)
		}
		if stored.Status != models.StatusActive {
			t.Errorf("status = %q, want active", stored.Status)
		}
	})

	t.Run("category accepts display labels", func(t *testing.T) {
		u := completeContractor("label@example.com")
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"category": "Material Supplier"})
		h.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		stored, err := h.Store.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Category != models.CategoryMaterialSupplier {
			t.Errorf("category = %q", stored.Category)
		}
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		u := completeContractor("badcategory@example.com")
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"category": "astronaut"})
		h.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		u := completeContractor("unknown@example.com")
		if _, err := db.Collection("users").InsertOne(ctx, u); err != nil {
			t.Fatal(err)
		}

		rec, req := patchRequest(t, u, map[string]interface{}{"status": "active"})
		h.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for unknown field", rec.Code)
		}
	})
}
