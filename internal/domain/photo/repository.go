package photo

import (
	"context"

	"github.com/google/uuid"
)

// PhotoRepository defines persistence operations for photos.
type PhotoRepository interface {
	Save(ctx context.Context, photo *Photo) error
	Update(ctx context.Context, photo *Photo) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Photo, error)
	// FindVisibleTo returns photos readable by the given viewer (all
	// photos for admins, public plus own for users, public only for
	// the nil viewer), newest first, with pagination.
	FindVisibleTo(ctx context.Context, viewerID uuid.UUID, isAdmin bool, page, limit int) ([]*Photo, int64, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Photo, error)
	// FindByIDs preserves the order of the requested IDs; unknown IDs
	// are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Photo, error)
	FindPublic(ctx context.Context) ([]*Photo, error)
	ListAll(ctx context.Context, page, limit int) ([]*Photo, int64, error)
	CountByVisibility(ctx context.Context) (map[string]int64, error)
}
