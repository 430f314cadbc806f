package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/escos-india/sthapati/internal/domain/models"
	"github.com/escos-india/sthapati/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func moderateReq(t *testing.T, admin models.User, path, id, action string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"id": id, "action": action})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewBuffer(body))
	req = testutil.SignedInRequest(req, admin)
	return httptest.NewRecorder(), req
}

func decodeModerate(t *testing.T, rec *httptest.ResponseRecorder) (status string, changed bool) {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Changed bool   `json:"changed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	return body.Status, body.Changed
}

func TestModerateUnauthorized(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users",
		bytes.NewBufferString(`{"id":"x","action":"ban"}`))
	h.ModerateUser(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestModerateArchitect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")

	t.Run("approve activates a pending architect", func(t *testing.T) {
		arch := fx.CreatePendingArchitect(ctx, "Pending One", "p1@example.com", "CA/2020/11111")

		rec, req := moderateReq(t, admin, "/api/admin/architects", arch.ID.Hex(), "approve")
		h.ModerateArchitect(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		status, changed := decodeModerate(t, rec)
		if status != models.StatusActive || !changed {
			t.Errorf("status=%q changed=%v, want active/true", status, changed)
		}

		stored, err := h.Users.GetByID(ctx, arch.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.StatusActive {
			t.Errorf("stored status = %q", stored.Status)
		}
		if stored.ApprovedBy == nil || *stored.ApprovedBy != admin.ID {
			t.Error("approved_by not recorded")
		}
	})

	t.Run("approve retry is a no-op success", func(t *testing.T) {
		arch := fx.CreatePendingArchitect(ctx, "Pending Two", "p2@example.com", "CA/2020/22222")

		rec, req := moderateReq(t, admin, "/api/admin/architects", arch.ID.Hex(), "approve")
		h.ModerateArchitect(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first approve: status = %d", rec.Code)
		}

		rec, req = moderateReq(t, admin, "/api/admin/architects", arch.ID.Hex(), "approve")
		h.ModerateArchitect(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("retry: status = %d, body %s", rec.Code, rec.Body.String())
		}
		status, changed := decodeModerate(t, rec)
		if status != models.StatusActive || changed {
			t.Errorf("retry: status=%q changed=%v, want active/false", status, changed)
		}
	})

	t.Run("reject records the reason", func(t *testing.T) {
		arch := fx.CreatePendingArchitect(ctx, "Pending Three", "p3@example.com", "CA/2020/33333")

		body, _ := json.Marshal(map[string]string{
			"id": arch.ID.Hex(), "action": "reject", "reason": "number not on the register",
		})
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/architects", bytes.NewBuffer(body))
		req = testutil.SignedInRequest(req, admin)
		rec := httptest.NewRecorder()
		h.ModerateArchitect(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		stored, err := h.Users.GetByID(ctx, arch.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Status != models.StatusRejected {
			t.Errorf("stored status = %q", stored.Status)
		}
		if stored.RejectReason != "number not on the register" {
			t.Error("reject_reason not recorded")
		}
	})

	t.Run("ban is not a valid architect action", func(t *testing.T) {
		arch := fx.CreatePendingArchitect(ctx, "Pending Four", "p4@example.com", "CA/2020/44444")

		rec, req := moderateReq(t, admin, "/api/admin/architects", arch.ID.Hex(), "ban")
		h.ModerateArchitect(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec, req := moderateReq(t, admin, "/api/admin/architects", primitive.NewObjectID().Hex(), "approve")
		h.ModerateArchitect(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("approve on an active non-architect is 400", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Active User", "active@example.com",
			models.CategoryContractor, models.StatusActive)

		rec, req := moderateReq(t, admin, "/api/admin/architects", u.ID.Hex(), "reject")
		h.ModerateArchitect(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for invalid transition", rec.Code)
		}
	})
}

func TestModerateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")

	t.Run("ban then unban round trip", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Target", "target@example.com",
			models.CategoryInteriorDesigner, models.StatusActive)

		rec, req := moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "ban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("ban: status = %d, body %s", rec.Code, rec.Body.String())
		}
		if status, changed := decodeModerate(t, rec); status != models.StatusBanned || !changed {
			t.Errorf("ban: status=%q changed=%v", status, changed)
		}

		rec, req = moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "unban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("unban: status = %d", rec.Code)
		}
		if status, changed := decodeModerate(t, rec); status != models.StatusActive || !changed {
			t.Errorf("unban: status=%q changed=%v", status, changed)
		}
	})

	t.Run("ban retry is a no-op success", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Repeat", "repeat@example.com",
			models.CategoryContractor, models.StatusActive)

		rec, req := moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "ban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("ban: status = %d", rec.Code)
		}

		rec, req = moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "ban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("retry: status = %d, body %s", rec.Code, rec.Body.String())
		}
		if status, changed := decodeModerate(t, rec); status != models.StatusBanned || changed {
			t.Errorf("retry: status=%q changed=%v, want banned/false", status, changed)
		}
	})

	t.Run("cannot ban a pending account", func(t *testing.T) {
		u := fx.CreatePendingArchitect(ctx, "Still Pending", "sp@example.com", "CA/2021/55555")

		rec, req := moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "ban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("approve is not a valid user action", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Someone", "someone@example.com",
			models.CategoryContractor, models.StatusActive)

		rec, req := moderateReq(t, admin, "/api/admin/users", u.ID.Hex(), "approve")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec, req := moderateReq(t, admin, "/api/admin/users", "not-hex", "ban")
		h.ModerateUser(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")

	deleteReq := func(userID string) (*httptest.ResponseRecorder, *http.Request) {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/users?userId="+userID, nil)
		req = testutil.SignedInRequest(req, admin)
		return httptest.NewRecorder(), req
	}

	t.Run("delete removes the account", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Doomed", "doomed@example.com",
			models.CategoryContractor, models.StatusActive)

		rec, req := deleteReq(u.ID.Hex())
		h.DeleteUser(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Deleted bool `json:"deleted"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if !body.Deleted {
			t.Error("deleted = false on first delete")
		}
		if _, err := h.Users.GetByID(ctx, u.ID); err == nil {
			t.Error("user still present after delete")
		}
	})

	t.Run("repeat delete still succeeds", func(t *testing.T) {
		u := fx.CreateUser(ctx, "Twice", "twice@example.com",
			models.CategoryContractor, models.StatusActive)

		rec, req := deleteReq(u.ID.Hex())
		h.DeleteUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first delete: status = %d", rec.Code)
		}

		rec, req = deleteReq(u.ID.Hex())
		h.DeleteUser(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("repeat delete: status = %d", rec.Code)
		}
		var body struct {
			Deleted bool `json:"deleted"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Deleted {
			t.Error("deleted = true on repeat delete")
		}
	})

	t.Run("missing userId is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/users", nil)
		req = testutil.SignedInRequest(req, admin)
		rec := httptest.NewRecorder()
		h.DeleteUser(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
