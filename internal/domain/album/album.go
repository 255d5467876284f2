package album

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Album is the aggregate root for a photo collection. Membership lives
// in explicit link rows (see AlbumPhoto) so that (album, photo) pairs
// stay unique at the store level.
type Album struct {
	id          uuid.UUID
	title       string
	description string
	ownerID     uuid.UUID
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAlbum creates a new album with validated fields.
func NewAlbum(ownerID uuid.UUID, title, description string) (*Album, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if title == "" {
		return nil, fmt.Errorf("album title is required")
	}

	now := time.Now().UTC()
	return &Album{
		id:          uuid.New(),
		title:       title,
		description: description,
		ownerID:     ownerID,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Album from persistence (no validation).
func Reconstruct(id, ownerID uuid.UUID, title, description string, createdAt, updatedAt time.Time) *Album {
	return &Album{
		id:          id,
		title:       title,
		description: description,
		ownerID:     ownerID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (a *Album) ID() uuid.UUID        { return a.id }
func (a *Album) Title() string        { return a.title }
func (a *Album) Description() string  { return a.description }
func (a *Album) OwnerID() uuid.UUID   { return a.ownerID }
func (a *Album) CreatedAt() time.Time { return a.createdAt }
func (a *Album) UpdatedAt() time.Time { return a.updatedAt }

// IsPublic is always false for albums; only contained photos carry a
// visibility flag, and each photo's own flag decides what a viewer sees.
func (a *Album) IsPublic() bool {
	return false
}

// IsOwnedBy checks if the album belongs to the given owner.
func (a *Album) IsOwnedBy(ownerID uuid.UUID) bool {
	return a.ownerID == ownerID
}

// Update applies partial updates to the album metadata.
func (a *Album) Update(title, description string) {
	if title != "" {
		a.title = title
	}
	if description != "" {
		a.description = description
	}
	a.updatedAt = time.Now().UTC()
}

// AlbumPhoto is the membership link between an album and a photo.
type AlbumPhoto struct {
	AlbumID uuid.UUID
	PhotoID uuid.UUID
	AddedAt time.Time
}
