package domain

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/yamdb/internal/access"
	"github.com/qs-lzh/yamdb/internal/model"
	"github.com/qs-lzh/yamdb/internal/service"
)

func TestReferenceDataRequiresAdmin(t *testing.T) {
	categories := NewCategoryService(newFakeCategoryRepo(), zaptest.NewLogger(t))
	genres := NewGenreService(newFakeGenreRepo(), zaptest.NewLogger(t))
	input := ReferenceInput{Name: "Film", Slug: "film"}

	for _, actor := range []*model.User{author, moderator} {
		if _, err := categories.CreateCategory(actor, input); !errors.Is(err, access.ErrPermissionDenied) {
			t.Errorf("category create by %s: got %v", actor.Username, err)
		}
		if _, err := genres.CreateGenre(actor, input); !errors.Is(err, access.ErrPermissionDenied) {
			t.Errorf("genre create by %s: got %v", actor.Username, err)
		}
		if err := categories.DeleteCategory(actor, "film"); !errors.Is(err, access.ErrPermissionDenied) {
			t.Errorf("category delete by %s: got %v", actor.Username, err)
		}
		if err := genres.DeleteGenre(actor, "film"); !errors.Is(err, access.ErrPermissionDenied) {
			t.Errorf("genre delete by %s: got %v", actor.Username, err)
		}
	}

	superuser := &model.User{ID: 9, Username: "su", Role: model.RoleUser, IsSuperuser: true}
	if _, err := categories.CreateCategory(superuser, input); err != nil {
		t.Fatalf("superuser create: %v", err)
	}
	if _, err := genres.CreateGenre(admin, input); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(), zaptest.NewLogger(t))

	if _, err := svc.CreateCategory(admin, ReferenceInput{Name: "Film", Slug: "film"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(admin, ReferenceInput{Name: "Film again", Slug: "film"}); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	_, err := svc.CreateCategory(admin, ReferenceInput{Name: "Bad", Slug: "bad slug"})
	requireFieldError(t, err, "slug")

	if err := svc.DeleteCategory(admin, "film"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := svc.DeleteCategory(admin, "film"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
