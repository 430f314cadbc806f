package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  User@Example.COM ", "user@example.com"},
		{"plain@example.com", "plain@example.com"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Email(c.in); got != c.want {
			t.Errorf("Email(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"+91 98765 43210", "+919876543210"},
		{"(022) 1234-5678", "02212345678"},
		{"98765abc43210", "9876543210"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Phone(c.in); got != c.want {
			t.Errorf("Phone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Material Supplier", "material_supplier"},
		{"  Architect ", "architect"},
		{"trade_professional", "trade_professional"},
		{"Educational Institute", "educational_institute"},
	}
	for _, c := range cases {
		if got := Category(c.in); got != c.want {
			t.Errorf("Category(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCOANumberPreservesCase(t *testing.T) {
	// The registration format check is case-sensitive, so normalization
	// must not upcase the prefix.
	if got := COANumber("  ca/2020/12345 "); got != "ca/2020/12345" {
		t.Errorf("COANumber trimmed = %q", got)
	}
	if got := COANumber("CA/2020/12345"); got != "CA/2020/12345" {
		t.Errorf("COANumber = %q", got)
	}
}

func TestAction(t *testing.T) {
	if got := Action(" Approve "); got != "approve" {
		t.Errorf("Action = %q", got)
	}
}
