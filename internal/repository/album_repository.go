package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitso-en/photovault/internal/domain"
	albumDomain "github.com/sitso-en/photovault/internal/domain/album"
)

// AlbumModel is the GORM model for the albums table.
type AlbumModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (AlbumModel) TableName() string { return "albums" }

// AlbumPhotoModel is the membership link row. The composite unique
// index is the store-level guard against duplicate membership; the
// repository never takes its own locks.
type AlbumPhotoModel struct {
	AlbumID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_photo;index"`
	PhotoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_album_photo"`
	AddedAt time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (AlbumPhotoModel) TableName() string { return "album_photos" }

// GormAlbumRepository implements AlbumRepository using GORM.
type GormAlbumRepository struct {
	db *gorm.DB
}

// NewGormAlbumRepository creates a new GormAlbumRepository.
func NewGormAlbumRepository(db *gorm.DB) *GormAlbumRepository {
	return &GormAlbumRepository{db: db}
}

// Save persists a new album.
func (r *GormAlbumRepository) Save(ctx context.Context, a *albumDomain.Album) error {
	model := toAlbumModel(a)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save album: %w", err)
	}
	return nil
}

// Update persists changes to an existing album.
func (r *GormAlbumRepository) Update(ctx context.Context, a *albumDomain.Album) error {
	model := toAlbumModel(a)
	result := r.db.WithContext(ctx).
		Model(&AlbumModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":       model.Title,
			"description": model.Description,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Album", model.ID.String())
	}
	return nil
}

// Delete removes an album and its membership links.
func (r *GormAlbumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Delete(&AlbumPhotoModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete album links: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&AlbumModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete album: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Album", id.String())
		}
		return nil
	})
}

// FindByID returns a single album by ID.
func (r *GormAlbumRepository) FindByID(ctx context.Context, id uuid.UUID) (*albumDomain.Album, error) {
	var model AlbumModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Album", id.String())
		}
		return nil, fmt.Errorf("failed to find album by ID: %w", err)
	}
	return toAlbumDomain(&model), nil
}

// FindByOwnerID returns albums for a specific owner with pagination,
// newest first.
func (r *GormAlbumRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*albumDomain.Album, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AlbumModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner albums: %w", err)
	}

	var models []AlbumModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner albums: %w", err)
	}

	return toAlbumDomains(models), total, nil
}

// ListAll returns all albums with pagination (admin).
func (r *GormAlbumRepository) ListAll(ctx context.Context, page, limit int) ([]*albumDomain.Album, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AlbumModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count albums: %w", err)
	}

	var models []AlbumModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list albums: %w", err)
	}

	return toAlbumDomains(models), total, nil
}

// AddPhoto inserts a membership link. A duplicate (album, photo) pair
// is rejected by the unique index and reported as a conflict, so a
// concurrent second add fails idempotently instead of duplicating.
func (r *GormAlbumRepository) AddPhoto(ctx context.Context, albumID, photoID uuid.UUID) error {
	link := AlbumPhotoModel{
		AlbumID: albumID,
		PhotoID: photoID,
		AddedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("photo is already in this album")
		}
		return fmt.Errorf("failed to add photo to album: %w", err)
	}
	return nil
}

// RemovePhoto deletes a membership link; an absent pair reports
// not-present.
func (r *GormAlbumRepository) RemovePhoto(ctx context.Context, albumID, photoID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("album_id = ? AND photo_id = ?", albumID, photoID).
		Delete(&AlbumPhotoModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove photo from album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("AlbumPhoto", photoID.String())
	}
	return nil
}

// FindPhotoIDs returns the member photo IDs in the order they were
// added.
func (r *GormAlbumRepository) FindPhotoIDs(ctx context.Context, albumID uuid.UUID) ([]uuid.UUID, error) {
	var links []AlbumPhotoModel
	if err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("added_at ASC").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find album photos: %w", err)
	}

	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.PhotoID
	}
	return ids, nil
}

// FindByPhotoID returns the albums a photo belongs to.
func (r *GormAlbumRepository) FindByPhotoID(ctx context.Context, photoID uuid.UUID) ([]*albumDomain.Album, error) {
	var models []AlbumModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN album_photos ON album_photos.album_id = albums.id").
		Where("album_photos.photo_id = ?", photoID).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find albums for photo: %w", err)
	}
	return toAlbumDomains(models), nil
}

// CountPhotos returns the number of photos in the album.
func (r *GormAlbumRepository) CountPhotos(ctx context.Context, albumID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&AlbumPhotoModel{}).
		Where("album_id = ?", albumID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count album photos: %w", err)
	}
	return count, nil
}

// --- Conversion Helpers ---

func toAlbumModel(a *albumDomain.Album) AlbumModel {
	return AlbumModel{
		ID:          a.ID(),
		Title:       a.Title(),
		Description: a.Description(),
		OwnerID:     a.OwnerID(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

func toAlbumDomain(m *AlbumModel) *albumDomain.Album {
	return albumDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Title,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toAlbumDomains(models []AlbumModel) []*albumDomain.Album {
	albums := make([]*albumDomain.Album, len(models))
	for i, m := range models {
		albums[i] = toAlbumDomain(&m)
	}
	return albums
}
