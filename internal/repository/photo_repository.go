package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitso-en/photovault/internal/domain"
	photoDomain "github.com/sitso-en/photovault/internal/domain/photo"
)

// PhotoModel is the GORM model for the photos table.
type PhotoModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Visibility  string    `gorm:"type:varchar(10);not null;index"`
	ImageURL    string    `gorm:"type:text;not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedAt  time.Time `gorm:"not null;index"`
}

// TableName sets the table name.
func (PhotoModel) TableName() string { return "photos" }

// GormPhotoRepository implements PhotoRepository using GORM.
type GormPhotoRepository struct {
	db *gorm.DB
}

// NewGormPhotoRepository creates a new GormPhotoRepository.
func NewGormPhotoRepository(db *gorm.DB) *GormPhotoRepository {
	return &GormPhotoRepository{db: db}
}

// Save persists a new photo.
func (r *GormPhotoRepository) Save(ctx context.Context, photo *photoDomain.Photo) error {
	model := toPhotoModel(photo)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}

// Update persists changes to an existing photo.
func (r *GormPhotoRepository) Update(ctx context.Context, photo *photoDomain.Photo) error {
	model := toPhotoModel(photo)
	result := r.db.WithContext(ctx).
		Model(&PhotoModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":       model.Title,
			"description": model.Description,
			"visibility":  model.Visibility,
			"image_url":   model.ImageURL,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update photo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Photo", model.ID.String())
	}
	return nil
}

// Delete removes a photo record. Membership links cascade at the
// store level.
func (r *GormPhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PhotoModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete photo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Photo", id.String())
	}
	return nil
}

// FindByID returns a single photo by ID.
func (r *GormPhotoRepository) FindByID(ctx context.Context, id uuid.UUID) (*photoDomain.Photo, error) {
	var model PhotoModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Photo", id.String())
		}
		return nil, fmt.Errorf("failed to find photo by ID: %w", err)
	}
	return toPhotoDomain(&model), nil
}

// FindVisibleTo returns the photos the given viewer may read, newest
// first, with pagination. Admins see everything; authenticated users
// see public photos plus their own; the nil viewer sees public only.
func (r *GormPhotoRepository) FindVisibleTo(ctx context.Context, viewerID uuid.UUID, isAdmin bool, page, limit int) ([]*photoDomain.Photo, int64, error) {
	// Each finisher gets its own chain; gorm chains accumulate
	// conditions across finishers when shared.
	scope := func(db *gorm.DB) *gorm.DB {
		switch {
		case isAdmin:
			return db
		case viewerID != uuid.Nil:
			return db.Where("visibility = ? OR owner_id = ?", string(photoDomain.VisibilityPublic), viewerID)
		default:
			return db.Where("visibility = ?", string(photoDomain.VisibilityPublic))
		}
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&PhotoModel{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count visible photos: %w", err)
	}

	var models []PhotoModel
	offset := (page - 1) * limit
	if err := scope(r.db.WithContext(ctx)).
		Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find visible photos: %w", err)
	}

	return toPhotoDomains(models), total, nil
}

// FindByOwnerID returns all photos owned by the given user, newest first.
func (r *GormPhotoRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*photoDomain.Photo, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find photos by owner: %w", err)
	}
	return toPhotoDomains(models), nil
}

// FindByIDs returns the photos matching the given IDs, preserving the
// request order. Missing IDs are skipped.
func (r *GormPhotoRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*photoDomain.Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []PhotoModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find photos by IDs: %w", err)
	}

	byID := make(map[uuid.UUID]*PhotoModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	photos := make([]*photoDomain.Photo, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			photos = append(photos, toPhotoDomain(m))
		}
	}
	return photos, nil
}

// FindPublic returns all public photos, newest first.
func (r *GormPhotoRepository) FindPublic(ctx context.Context) ([]*photoDomain.Photo, error) {
	var models []PhotoModel
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", string(photoDomain.VisibilityPublic)).
		Order("uploaded_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find public photos: %w", err)
	}
	return toPhotoDomains(models), nil
}

// ListAll returns all photos with pagination (admin).
func (r *GormPhotoRepository) ListAll(ctx context.Context, page, limit int) ([]*photoDomain.Photo, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PhotoModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	var models []PhotoModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list photos: %w", err)
	}

	return toPhotoDomains(models), total, nil
}

// CountByVisibility returns photo counts grouped by visibility (admin).
func (r *GormPhotoRepository) CountByVisibility(ctx context.Context) (map[string]int64, error) {
	type visibilityCount struct {
		Visibility string
		Count      int64
	}
	var results []visibilityCount
	if err := r.db.WithContext(ctx).Model(&PhotoModel{}).
		Select("visibility, count(*) as count").
		Group("visibility").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by visibility: %w", err)
	}

	counts := make(map[string]int64)
	for _, vc := range results {
		counts[vc.Visibility] = vc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toPhotoModel(p *photoDomain.Photo) PhotoModel {
	return PhotoModel{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Visibility:  string(p.Visibility()),
		ImageURL:    p.ImageURL(),
		OwnerID:     p.OwnerID(),
		UploadedAt:  p.UploadedAt(),
	}
}

func toPhotoDomain(m *PhotoModel) *photoDomain.Photo {
	return photoDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Title,
		m.Description,
		photoDomain.Visibility(m.Visibility),
		m.ImageURL,
		m.UploadedAt,
	)
}

func toPhotoDomains(models []PhotoModel) []*photoDomain.Photo {
	photos := make([]*photoDomain.Photo, len(models))
	for i, m := range models {
		photos[i] = toPhotoDomain(&m)
	}
	return photos
}
