// Package access decides whether an actor may perform an action on a
// collection or on a single loaded object.
//
// Every decision runs in two phases. The collection check happens before
// storage is touched; the object check happens only after the target has
// been loaded, because authorship is a property of the row. A request that
// fails the collection check never loads the row, so a denial does not
// reveal whether the row exists.
//
// The anonymous actor is a nil *model.User.
package access

import (
	"errors"

	"github.com/qs-lzh/yamdb/internal/model"
)

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// ReadOnly reports whether the action leaves state unchanged.
func (a Action) ReadOnly() bool {
	return a == ActionList || a == ActionRetrieve
}

// Owned is implemented by objects that have an author.
type Owned interface {
	OwnerID() uint
}

type Policy interface {
	AllowsCollection(actor *model.User, action Action) bool
	AllowsObject(actor *model.User, action Action, obj any) bool
}

type readOnlyOrAdmin struct{}

func (readOnlyOrAdmin) AllowsCollection(actor *model.User, action Action) bool {
	return action.ReadOnly() || actor.IsAdmin()
}

func (p readOnlyOrAdmin) AllowsObject(actor *model.User, action Action, _ any) bool {
	return p.AllowsCollection(actor, action)
}

type authorOrModerator struct{}

func (authorOrModerator) AllowsCollection(actor *model.User, action Action) bool {
	return action.ReadOnly() || actor.IsAuthenticated()
}

func (authorOrModerator) AllowsObject(actor *model.User, action Action, obj any) bool {
	if action.ReadOnly() {
		return true
	}
	if !actor.IsAuthenticated() {
		return false
	}
	if actor.IsModerator() || actor.IsAdmin() {
		return true
	}
	return isOwner(actor, obj)
}

type adminOnly struct{}

func (adminOnly) AllowsCollection(actor *model.User, _ Action) bool {
	return actor.IsAdmin()
}

func (adminOnly) AllowsObject(actor *model.User, action Action, obj any) bool {
	if actor.IsAdmin() {
		return true
	}
	return action == ActionDelete && isOwner(actor, obj)
}

type authenticated struct{}

func (authenticated) AllowsCollection(actor *model.User, _ Action) bool {
	return actor.IsAuthenticated()
}

func (authenticated) AllowsObject(actor *model.User, _ Action, _ any) bool {
	return actor.IsAuthenticated()
}

func isOwner(actor *model.User, obj any) bool {
	if actor == nil {
		return false
	}
	owned, ok := obj.(Owned)
	if !ok {
		return false
	}
	return owned.OwnerID() == actor.ID
}

var (
	ReadOnlyOrAdmin   Policy = readOnlyOrAdmin{}
	AuthorOrModerator Policy = authorOrModerator{}
	AdminOnly         Policy = adminOnly{}
	Authenticated     Policy = authenticated{}
)

func deny(actor *model.User) error {
	if actor == nil {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}

// CheckCollection runs the collection phase only.
func CheckCollection(p Policy, actor *model.User, action Action) error {
	if !p.AllowsCollection(actor, action) {
		return deny(actor)
	}
	return nil
}

// CheckObject runs the object phase against an already loaded object.
func CheckObject(p Policy, actor *model.User, action Action, obj any) error {
	if !p.AllowsObject(actor, action, obj) {
		return deny(actor)
	}
	return nil
}

// Authorize runs both phases. load is called only when the collection
// check passes, and its error is returned unchanged.
func Authorize[T any](p Policy, actor *model.User, action Action, load func() (T, error)) (T, error) {
	var zero T
	if err := CheckCollection(p, actor, action); err != nil {
		return zero, err
	}
	obj, err := load()
	if err != nil {
		return zero, err
	}
	if err := CheckObject(p, actor, action, obj); err != nil {
		return zero, err
	}
	return obj, nil
}
