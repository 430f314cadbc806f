package emailverify

import (
	"errors"
	"testing"

	"github.com/escos-india/sthapati/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q is not numeric", code)
			}
		}
	}
}

func TestVerifyCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db, 0)

	t.Run("round trip consumes the record", func(t *testing.T) {
		userID := primitive.NewObjectID()
		res, err := s.Create(ctx, userID, "rt@example.com", false)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		v, err := s.VerifyCode(ctx, userID, res.Code)
		if err != nil {
			t.Fatalf("VerifyCode: %v", err)
		}
		if v.Email != "rt@example.com" {
			t.Errorf("email = %q", v.Email)
		}

		if _, err := s.VerifyCode(ctx, userID, res.Code); !errors.Is(err, ErrNotFound) {
			t.Errorf("second verify err = %v, want ErrNotFound", err)
		}
	})

	t.Run("wrong code fails without consuming", func(t *testing.T) {
		userID := primitive.NewObjectID()
		res, err := s.Create(ctx, userID, "wc@example.com", false)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if _, err := s.VerifyCode(ctx, userID, "000000"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("err = %v, want ErrInvalidCode", err)
		}
		if _, err := s.VerifyCode(ctx, userID, res.Code); err != nil {
			t.Errorf("correct code after one miss: %v", err)
		}
	})

	t.Run("attempts are capped", func(t *testing.T) {
		userID := primitive.NewObjectID()
		res, err := s.Create(ctx, userID, "cap@example.com", false)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		for i := 0; i < MaxVerifyAttempts; i++ {
			if _, err := s.VerifyCode(ctx, userID, "000000"); !errors.Is(err, ErrInvalidCode) {
				t.Fatalf("attempt %d: err = %v", i, err)
			}
		}
		// The correct code no longer works once the cap is hit.
		if _, err := s.VerifyCode(ctx, userID, res.Code); !errors.Is(err, ErrTooManyAttempts) {
			t.Errorf("err = %v, want ErrTooManyAttempts", err)
		}
	})
}

func TestVerifyToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db, 0)

	userID := primitive.NewObjectID()
	res, err := s.Create(ctx, userID, "link@example.com", false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	v, err := s.VerifyToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if v.UserID != userID {
		t.Errorf("user id = %s", v.UserID.Hex())
	}

	if _, err := s.VerifyToken(ctx, res.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("second verify err = %v, want ErrNotFound", err)
	}
}

func TestResendRateLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := New(db, 0)

	userID := primitive.NewObjectID()
	if _, err := s.Create(ctx, userID, "rl@example.com", false); err != nil {
		t.Fatalf("initial create: %v", err)
	}

	for i := 0; i < MaxResends; i++ {
		if _, err := s.Create(ctx, userID, "rl@example.com", true); err != nil {
			t.Fatalf("resend %d: %v", i+1, err)
		}
	}
	if _, err := s.Create(ctx, userID, "rl@example.com", true); !errors.Is(err, ErrTooManyResends) {
		t.Errorf("err = %v, want ErrTooManyResends", err)
	}
}
