package validate_test

import (
	"testing"

	"agrimarket/internal/validate"
)

func TestQ(t *testing.T) {
	good := []string{"tomato", "Cherry Tomato", "grade-1", "farmer's wheat", "deals"}
	for _, s := range good {
		if _, ok := validate.Q(s); !ok {
			t.Errorf("Q(%q) should pass", s)
		}
	}
	bad := []string{"", "  ", "<script>", "a;b", "q=1&r=2"}
	for _, s := range bad {
		if _, ok := validate.Q(s); ok {
			t.Errorf("Q(%q) should fail", s)
		}
	}
}

func TestPassword(t *testing.T) {
	if !validate.Password("Passw0rd!") {
		t.Error("complex password should pass")
	}
	for _, s := range []string{"short1A", "alllowercase1", "ALLUPPER1", "NoDigitsHere"} {
		if validate.Password(s) {
			t.Errorf("Password(%q) should fail", s)
		}
	}
}

func TestEmail(t *testing.T) {
	if _, ok := validate.Email(" farmer@agrimarket.test "); !ok {
		t.Error("trimmed email should pass")
	}
	for _, s := range []string{"", "not-an-email", "a@b", "x@y."} {
		if _, ok := validate.Email(s); ok {
			t.Errorf("Email(%q) should fail", s)
		}
	}
}

func TestIconSlug(t *testing.T) {
	cases := map[string]string{
		"Maize":            "maize.png",
		"  Cherry Tomato ": "cherry-tomato.png",
		"a/b\\c":           "abc.png",
		"":                 "market.png",
	}
	for in, want := range cases {
		if got := validate.IconSlug(in); got != want {
			t.Errorf("IconSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
