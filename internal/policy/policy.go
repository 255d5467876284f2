package policy

import (
	"github.com/google/uuid"

	"github.com/sitso-en/photovault/internal/domain/user"
)

// Actor is the authenticated-or-anonymous identity a request acts as.
// It is resolved once per request by the auth middleware and passed
// down; handlers and services never re-derive role checks ad hoc.
type Actor struct {
	ID            uuid.UUID
	Role          user.Role
	Authenticated bool
}

// Anonymous is the actor for unauthenticated requests.
func Anonymous() Actor {
	return Actor{}
}

// NewActor builds an authenticated actor.
func NewActor(id uuid.UUID, role user.Role) Actor {
	return Actor{ID: id, Role: role, Authenticated: true}
}

// IsAdmin returns true for authenticated admins.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && a.Role == user.RoleAdmin
}

// Owned is an entity subject to ownership and visibility rules.
type Owned interface {
	OwnerID() uuid.UUID
	IsPublic() bool
}

// CanRead reports whether the actor may read the entity. Admins read
// everything; public entities are readable by anyone; private entities
// only by their authenticated owner.
func CanRead(actor Actor, entity Owned) bool {
	if actor.IsAdmin() {
		return true
	}
	if entity.IsPublic() {
		return true
	}
	return actor.Authenticated && actor.ID == entity.OwnerID()
}

// CanWrite reports whether the actor may update or delete the entity.
// Admins write everything; otherwise only the authenticated owner.
// Anonymous actors can never write.
func CanWrite(actor Actor, entity Owned) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Authenticated && actor.ID == entity.OwnerID()
}
