package album

import (
	"context"

	"github.com/google/uuid"
)

// AlbumRepository defines persistence operations for albums and their
// membership links. AddPhoto must surface a conflict for a duplicate
// (album, photo) pair; RemovePhoto must surface not-found for an
// absent pair. Both rely on the store-level uniqueness constraint, not
// on in-process locking.
type AlbumRepository interface {
	Save(ctx context.Context, a *Album) error
	Update(ctx context.Context, a *Album) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Album, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Album, int64, error)
	ListAll(ctx context.Context, page, limit int) ([]*Album, int64, error)

	AddPhoto(ctx context.Context, albumID, photoID uuid.UUID) error
	RemovePhoto(ctx context.Context, albumID, photoID uuid.UUID) error
	// FindPhotoIDs returns member photo IDs ordered by the time they
	// were added to the album.
	FindPhotoIDs(ctx context.Context, albumID uuid.UUID) ([]uuid.UUID, error)
	// FindByPhotoID returns the albums a photo belongs to, used to fan
	// invalidations out to album views. The full aggregates come back
	// because the invalidation keys need each album's owner.
	FindByPhotoID(ctx context.Context, photoID uuid.UUID) ([]*Album, error)
	CountPhotos(ctx context.Context, albumID uuid.UUID) (int64, error)
}
