package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sitso-en/photovault/internal/domain/user"
)

type ownedStub struct {
	owner  uuid.UUID
	public bool
}

func (o ownedStub) OwnerID() uuid.UUID { return o.owner }
func (o ownedStub) IsPublic() bool     { return o.public }

func TestCanRead(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	owner := NewActor(ownerID, user.RoleUser)
	other := NewActor(otherID, user.RoleUser)
	admin := NewActor(uuid.New(), user.RoleAdmin)
	anon := Anonymous()

	private := ownedStub{owner: ownerID, public: false}
	public := ownedStub{owner: ownerID, public: true}

	tests := []struct {
		name   string
		actor  Actor
		entity ownedStub
		want   bool
	}{
		{"owner reads own private", owner, private, true},
		{"other user denied private", other, private, false},
		{"anonymous denied private", anon, private, false},
		{"admin reads private", admin, private, true},
		{"owner reads own public", owner, public, true},
		{"other user reads public", other, public, true},
		{"anonymous reads public", anon, public, true},
		{"admin reads public", admin, public, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanRead(tt.actor, tt.entity))
		})
	}
}

func TestCanWrite(t *testing.T) {
	ownerID := uuid.New()

	owner := NewActor(ownerID, user.RoleUser)
	other := NewActor(uuid.New(), user.RoleUser)
	admin := NewActor(uuid.New(), user.RoleAdmin)
	anon := Anonymous()

	// Visibility never grants write access, so a public entity is the
	// stricter case to assert on.
	public := ownedStub{owner: ownerID, public: true}
	private := ownedStub{owner: ownerID, public: false}

	assert.True(t, CanWrite(owner, public))
	assert.True(t, CanWrite(owner, private))
	assert.True(t, CanWrite(admin, private))
	assert.False(t, CanWrite(other, public))
	assert.False(t, CanWrite(other, private))
	assert.False(t, CanWrite(anon, public))
	assert.False(t, CanWrite(anon, private))
}

func TestIsAdmin_RequiresAuthentication(t *testing.T) {
	unauthenticated := Actor{Role: user.RoleAdmin}
	assert.False(t, unauthenticated.IsAdmin())
}
