package access

import (
	"errors"
	"testing"

	"github.com/qs-lzh/yamdb/internal/model"
)

var (
	anonymous = (*model.User)(nil)
	plainUser = &model.User{ID: 1, Username: "alice", Role: model.RoleUser}
	otherUser = &model.User{ID: 2, Username: "bob", Role: model.RoleUser}
	moderator = &model.User{ID: 3, Username: "mod", Role: model.RoleModerator}
	admin     = &model.User{ID: 4, Username: "root", Role: model.RoleAdmin}
	superuser = &model.User{ID: 5, Username: "su", Role: model.RoleUser, IsSuperuser: true}
)

var mutating = []Action{ActionCreate, ActionUpdate, ActionDelete}

func TestReadOnlyOrAdmin(t *testing.T) {
	for _, actor := range []*model.User{anonymous, plainUser, moderator, admin, superuser} {
		for _, action := range []Action{ActionList, ActionRetrieve} {
			if !ReadOnlyOrAdmin.AllowsCollection(actor, action) {
				t.Errorf("read %s should be allowed for %v", action, actor)
			}
		}
	}
	for _, action := range mutating {
		for _, actor := range []*model.User{anonymous, plainUser, otherUser, moderator} {
			if ReadOnlyOrAdmin.AllowsCollection(actor, action) {
				t.Errorf("%s should be denied for %+v", action, actor)
			}
		}
		for _, actor := range []*model.User{admin, superuser} {
			if !ReadOnlyOrAdmin.AllowsCollection(actor, action) {
				t.Errorf("%s should be allowed for %+v", action, actor)
			}
		}
	}
}

func TestAuthorOrModerator(t *testing.T) {
	review := &model.Review{ID: 10, AuthorID: plainUser.ID}

	if AuthorOrModerator.AllowsCollection(anonymous, ActionCreate) {
		t.Error("anonymous create should be denied")
	}
	if !AuthorOrModerator.AllowsCollection(otherUser, ActionCreate) {
		t.Error("authenticated create should be allowed")
	}
	if !AuthorOrModerator.AllowsObject(anonymous, ActionRetrieve, review) {
		t.Error("anonymous read should be allowed")
	}

	for _, action := range []Action{ActionUpdate, ActionDelete} {
		tests := []struct {
			actor *model.User
			want  bool
		}{
			{anonymous, false},
			{otherUser, false},
			{plainUser, true},
			{moderator, true},
			{admin, true},
			{superuser, true},
		}
		for _, tt := range tests {
			if got := AuthorOrModerator.AllowsObject(tt.actor, action, review); got != tt.want {
				t.Errorf("%s by %+v = %v, want %v", action, tt.actor, got, tt.want)
			}
		}
	}
}

func TestAdminOnlyAllowsSelfDelete(t *testing.T) {
	if AdminOnly.AllowsCollection(plainUser, ActionList) {
		t.Error("non-admin list should be denied")
	}
	if !AdminOnly.AllowsObject(plainUser, ActionDelete, plainUser) {
		t.Error("deleting own record should pass the object check")
	}
	if AdminOnly.AllowsObject(plainUser, ActionUpdate, plainUser) {
		t.Error("updating own record through AdminOnly should be denied")
	}
	if AdminOnly.AllowsObject(plainUser, ActionDelete, otherUser) {
		t.Error("deleting another record should be denied")
	}
	if !AdminOnly.AllowsObject(admin, ActionUpdate, otherUser) {
		t.Error("admin update should be allowed")
	}
}

func TestAuthorizeSkipsLoadOnCollectionDenial(t *testing.T) {
	loaded := false
	load := func() (*model.Review, error) {
		loaded = true
		return &model.Review{AuthorID: plainUser.ID}, nil
	}

	_, err := Authorize(AuthorOrModerator, anonymous, ActionDelete, load)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if loaded {
		t.Fatal("object must not be loaded when the collection check fails")
	}

	_, err = Authorize(ReadOnlyOrAdmin, plainUser, ActionUpdate, load)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if loaded {
		t.Fatal("object must not be loaded when the collection check fails")
	}
}

func TestAuthorizeObjectPhase(t *testing.T) {
	load := func() (*model.Review, error) {
		return &model.Review{ID: 1, AuthorID: plainUser.ID}, nil
	}

	if _, err := Authorize(AuthorOrModerator, otherUser, ActionUpdate, load); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	got, err := Authorize(AuthorOrModerator, plainUser, ActionUpdate, load)
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("unexpected object %+v", got)
	}
}

func TestAuthorizePropagatesLoadError(t *testing.T) {
	notFound := errors.New("not found")
	_, err := Authorize(AuthorOrModerator, plainUser, ActionDelete, func() (*model.Review, error) {
		return nil, notFound
	})
	if !errors.Is(err, notFound) {
		t.Fatalf("expected load error, got %v", err)
	}
}
