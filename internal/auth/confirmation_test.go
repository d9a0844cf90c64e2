package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/qs-lzh/yamdb/internal/model"
)

func newTestGenerator(t *testing.T, now time.Time) *CodeGenerator {
	t.Helper()
	g, err := NewCodeGenerator("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodeGenerator: %v", err)
	}
	g.now = func() time.Time { return now }
	return g
}

func TestCodeGeneratorRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(t, now)
	user := &model.User{ID: 7, Username: "bob", Email: "bob@example.com"}

	code := g.Make(user)
	if !strings.Contains(code, "-") {
		t.Fatalf("unexpected code format %q", code)
	}
	if !g.Check(user, code) {
		t.Fatal("freshly made code should verify")
	}
	if g.Check(user, code+"0") {
		t.Fatal("tampered code should not verify")
	}
	if g.Check(user, "") || g.Check(user, "garbage") || g.Check(nil, code) {
		t.Fatal("malformed input should not verify")
	}
}

func TestCodeGeneratorTracksSecretState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(t, now)
	user := &model.User{ID: 7, Username: "bob", Email: "bob@example.com"}
	code := g.Make(user)

	loggedIn := now.Add(time.Minute)
	changed := []struct {
		name string
		user *model.User
	}{
		{"last login", &model.User{ID: 7, Username: "bob", Email: "bob@example.com", LastLogin: &loggedIn}},
		{"password", &model.User{ID: 7, Username: "bob", Email: "bob@example.com", HashedPassword: "x"}},
		{"email", &model.User{ID: 7, Username: "bob", Email: "other@example.com"}},
		{"id", &model.User{ID: 8, Username: "bob", Email: "bob@example.com"}},
	}
	for _, tt := range changed {
		if g.Check(tt.user, code) {
			t.Errorf("code should not verify after %s changes", tt.name)
		}
	}
}

func TestCodeGeneratorExpires(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := newTestGenerator(t, issued)
	user := &model.User{ID: 1, Email: "a@x.com"}
	code := g.Make(user)

	g.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if !g.Check(user, code) {
		t.Fatal("code should still be valid inside the window")
	}
	g.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if g.Check(user, code) {
		t.Fatal("code should expire after the window")
	}
}

func TestNewCodeGeneratorRejectsEmptySecret(t *testing.T) {
	if _, err := NewCodeGenerator("", time.Hour); err == nil {
		t.Fatal("expected error")
	}
}
