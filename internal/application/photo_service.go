package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitso-en/photovault/internal/cache"
	"github.com/sitso-en/photovault/internal/config"
	"github.com/sitso-en/photovault/internal/domain"
	albumDomain "github.com/sitso-en/photovault/internal/domain/album"
	photoDomain "github.com/sitso-en/photovault/internal/domain/photo"
	"github.com/sitso-en/photovault/internal/events"
	"github.com/sitso-en/photovault/internal/kafka"
	"github.com/sitso-en/photovault/internal/policy"
	"github.com/sitso-en/photovault/internal/storage"
)

// DefaultPageLimit is the fixed page size for cached list views. A
// fixed size keeps the cache key space enumerable for invalidation:
// page number is the only pagination dimension a key carries.
const DefaultPageLimit = 20

// UploadPhotoRequest holds the data to upload a new photo.
type UploadPhotoRequest struct {
	Title       string
	Description string
	Visibility  string
	FileName    string
	Data        []byte
}

// UpdatePhotoRequest holds partial updates; a non-empty Data replaces
// the stored image.
type UpdatePhotoRequest struct {
	Title       string
	Description string
	Visibility  string
	FileName    string
	Data        []byte
}

// PhotoDTO is the API response representation of a photo.
type PhotoDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	ImageURL    string    `json:"image_url"`
	OwnerID     uuid.UUID `json:"owner_id"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// FlaggedPhotoDTO reports an admin force-delete outcome.
type FlaggedPhotoDTO struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	OwnerID uuid.UUID `json:"owner_id"`
	Reason  string    `json:"reason"`
}

// PhotoStatsDTO holds photo statistics for the admin dashboard.
type PhotoStatsDTO struct {
	TotalPhotos  int64            `json:"total_photos"`
	ByVisibility map[string]int64 `json:"by_visibility"`
}

// PhotoService orchestrates photo use cases: policy checks, the
// object-store upload/delete lifecycle, cache-aside reads and the
// synchronous invalidation that follows every mutation.
type PhotoService struct {
	repo      photoDomain.PhotoRepository
	albumRepo albumDomain.AlbumRepository
	store     storage.ObjectStore
	cache     *cache.Store
	inv       *cache.Invalidator
	producer  *kafka.Producer
	cacheCfg  config.CacheConfig
	logger    *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(
	repo photoDomain.PhotoRepository,
	albumRepo albumDomain.AlbumRepository,
	store storage.ObjectStore,
	cacheStore *cache.Store,
	inv *cache.Invalidator,
	producer *kafka.Producer,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *PhotoService {
	return &PhotoService{
		repo:      repo,
		albumRepo: albumRepo,
		store:     store,
		cache:     cacheStore,
		inv:       inv,
		producer:  producer,
		cacheCfg:  cacheCfg,
		logger:    logger,
	}
}

// ListPhotos returns the paginated feed visible to the actor, cached
// under a viewer-scoped key.
func (s *PhotoService) ListPhotos(ctx context.Context, actor policy.Actor, page int) (*domain.PaginatedResult[PhotoDTO], error) {
	key := cache.KeyPhotoListAnon(page)
	if actor.Authenticated {
		key = cache.KeyPhotoList(actor.ID, page)
	}

	result, err := cache.GetOrPopulate(ctx, s.cache, key, s.cacheCfg.TTL, func(ctx context.Context) (domain.PaginatedResult[PhotoDTO], error) {
		photos, total, err := s.repo.FindVisibleTo(ctx, actor.ID, actor.IsAdmin(), page, DefaultPageLimit)
		if err != nil {
			return domain.PaginatedResult[PhotoDTO]{}, err
		}
		return domain.NewPaginatedResult(toPhotoDTOs(photos), total, page, DefaultPageLimit), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPhoto returns a single photo. The cached payload is viewer
// independent; the policy gate runs on every request, cached or not.
// Public photos stay cached an order of magnitude longer than private
// ones since they change rarely and serve every viewer.
func (s *PhotoService) GetPhoto(ctx context.Context, actor policy.Actor, photoID uuid.UUID) (*PhotoDTO, error) {
	key := cache.KeyPhotoDetail(photoID)

	var dto PhotoDTO
	if s.cache.Get(ctx, key, &dto) {
		if !canReadDTO(actor, dto) {
			return nil, domain.NewForbiddenError("you do not have access to this photo")
		}
		return &dto, nil
	}

	p, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, p) {
		return nil, domain.NewForbiddenError("you do not have access to this photo")
	}

	dto = toPhotoDTO(p)
	ttl := s.cacheCfg.TTL
	if p.IsPublic() {
		ttl = s.cacheCfg.TTLLong
	}
	s.cache.Set(ctx, key, dto, ttl)

	return &dto, nil
}

// MyPhotos returns all photos owned by the actor, cached briefly.
func (s *PhotoService) MyPhotos(ctx context.Context, actor policy.Actor) ([]PhotoDTO, error) {
	if !actor.Authenticated {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	return cache.GetOrPopulate(ctx, s.cache, cache.KeyMyPhotos(actor.ID), s.cacheCfg.TTL, func(ctx context.Context) ([]PhotoDTO, error) {
		photos, err := s.repo.FindByOwnerID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return toPhotoDTOs(photos), nil
	})
}

// PublicPhotos returns every public photo. Public content changes less
// often, so the entry lives twice as long as user-scoped ones.
func (s *PhotoService) PublicPhotos(ctx context.Context) ([]PhotoDTO, error) {
	return cache.GetOrPopulate(ctx, s.cache, cache.KeyPublicPhotos(), 2*s.cacheCfg.TTL, func(ctx context.Context) ([]PhotoDTO, error) {
		photos, err := s.repo.FindPublic(ctx)
		if err != nil {
			return nil, err
		}
		return toPhotoDTOs(photos), nil
	})
}

// UploadPhoto validates and stores the binary, persists the record and
// invalidates every cache view the new photo can appear in. Validation
// failures abort before anything is uploaded or persisted.
func (s *PhotoService) UploadPhoto(ctx context.Context, actor policy.Actor, req UploadPhotoRequest) (*PhotoDTO, error) {
	if !actor.Authenticated {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	visibility, err := photoDomain.ParseVisibility(defaultVisibility(req.Visibility))
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	folder := fmt.Sprintf("users/%s", actor.ID)
	imageURL, err := s.store.Upload(ctx, req.Data, req.FileName, folder)
	if err != nil {
		if storage.IsValidation(err) {
			return nil, err
		}
		return nil, domain.NewStorageError(err.Error(), err)
	}

	p, err := photoDomain.NewPhoto(actor.ID, req.Title, req.Description, visibility, imageURL)
	if err != nil {
		s.deleteBlob(ctx, imageURL)
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, p); err != nil {
		// The record is authoritative; without it the blob is an
		// orphan, so reclaim it eagerly.
		s.deleteBlob(ctx, imageURL)
		return nil, err
	}

	s.inv.PhotoMutated(ctx, actor.ID, p.ID())

	s.publishEvent(ctx, events.TopicPhotoEvents, events.PhotoUploaded, events.PhotoUploadedEvent{
		PhotoID:    p.ID(),
		OwnerID:    p.OwnerID(),
		Visibility: string(p.Visibility()),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("photo uploaded",
		zap.String("photo_id", p.ID().String()),
		zap.String("owner_id", actor.ID.String()),
	)

	dto := toPhotoDTO(p)
	return &dto, nil
}

// UpdatePhoto applies metadata changes and optionally replaces the
// stored image, then invalidates every dependent cache key. Metadata
// is validated before anything touches storage, and the replaced blob
// is dropped only once the record update has stuck, so a failure on
// any step leaves the persisted photo and its blob intact.
func (s *PhotoService) UpdatePhoto(ctx context.Context, actor policy.Actor, photoID uuid.UUID, req UpdatePhotoRequest) (*PhotoDTO, error) {
	p, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !policy.CanWrite(actor, p) {
		return nil, domain.NewForbiddenError("you cannot modify this photo")
	}

	if err := p.Update(req.Title, req.Description, photoDomain.Visibility(req.Visibility)); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var oldURL string
	if len(req.Data) > 0 {
		oldURL = p.ImageURL()
		folder := fmt.Sprintf("users/%s", p.OwnerID())
		newURL, err := s.store.Upload(ctx, req.Data, req.FileName, folder)
		if err != nil {
			if storage.IsValidation(err) {
				return nil, err
			}
			return nil, domain.NewStorageError(err.Error(), err)
		}
		if err := p.ReplaceImage(newURL); err != nil {
			s.deleteBlob(ctx, newURL)
			return nil, domain.NewValidationError(err.Error())
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if oldURL != "" {
			// The record still references the old blob; the new one
			// is an orphan, reclaim it.
			s.deleteBlob(ctx, p.ImageURL())
		}
		return nil, err
	}
	if oldURL != "" {
		// The replaced blob is no longer referenced; a failed delete
		// leaves a reclaimable orphan, nothing more.
		s.deleteBlob(ctx, oldURL)
	}

	s.inv.PhotoMutated(ctx, p.OwnerID(), p.ID())
	s.invalidateAlbumViews(ctx, s.containingAlbums(ctx, p.ID()))

	dto := toPhotoDTO(p)
	return &dto, nil
}

// DeletePhoto removes the photo record and its stored binary. The
// record is the source of truth: a failed storage delete downgrades to
// a warning on an otherwise successful response, never an abort.
func (s *PhotoService) DeletePhoto(ctx context.Context, actor policy.Actor, photoID uuid.UUID) (warning string, err error) {
	p, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		return "", err
	}
	if !policy.CanWrite(actor, p) {
		return "", domain.NewForbiddenError("you cannot delete this photo")
	}

	// Membership links cascade with the record, so the containing
	// albums must be enumerated before the delete.
	albums := s.containingAlbums(ctx, photoID)

	var storageErr error
	if delErr := s.store.Delete(ctx, p.ImageURL()); delErr != nil {
		storageErr = delErr
		s.logger.Warn("storage deletion failed, proceeding with record delete",
			zap.String("photo_id", photoID.String()),
			zap.Error(delErr),
		)
	}

	if err := s.repo.Delete(ctx, photoID); err != nil {
		return "", err
	}

	s.inv.PhotoMutated(ctx, p.OwnerID(), photoID)
	s.invalidateAlbumViews(ctx, albums)

	s.publishEvent(ctx, events.TopicPhotoEvents, events.PhotoDeleted, events.PhotoDeletedEvent{
		PhotoID:    photoID,
		OwnerID:    p.OwnerID(),
		OccurredAt: time.Now().UTC(),
	})

	if storageErr != nil {
		return fmt.Sprintf("storage deletion failed: %s", storageErr), nil
	}
	return "", nil
}

// AdminFlagDelete force-deletes a photo flagged by an admin. Because
// the affected viewer set is unknown, the public-scoped caches are
// purged unconditionally on top of the owner-scoped fan-out.
func (s *PhotoService) AdminFlagDelete(ctx context.Context, actor policy.Actor, photoID uuid.UUID, reason string) (*FlaggedPhotoDTO, string, error) {
	if !actor.IsAdmin() {
		return nil, "", domain.NewForbiddenError("admin role required")
	}
	if reason == "" {
		reason = "inappropriate content"
	}

	p, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		return nil, "", err
	}

	albums := s.containingAlbums(ctx, photoID)

	var storageErr error
	if delErr := s.store.Delete(ctx, p.ImageURL()); delErr != nil {
		storageErr = delErr
		s.logger.Warn("storage deletion failed during flag-delete",
			zap.String("photo_id", photoID.String()),
			zap.Error(delErr),
		)
	}

	if err := s.repo.Delete(ctx, photoID); err != nil {
		return nil, "", err
	}

	s.inv.PhotoMutated(ctx, p.OwnerID(), photoID)
	s.invalidateAlbumViews(ctx, albums)
	s.inv.GlobalPurge(ctx)

	s.publishEvent(ctx, events.TopicPhotoEvents, events.PhotoFlagged, events.PhotoFlaggedEvent{
		PhotoID:    photoID,
		OwnerID:    p.OwnerID(),
		AdminID:    actor.ID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("photo flagged and deleted",
		zap.String("photo_id", photoID.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("reason", reason),
	)

	result := &FlaggedPhotoDTO{
		ID:      photoID,
		Title:   p.Title(),
		OwnerID: p.OwnerID(),
		Reason:  reason,
	}
	warning := ""
	if storageErr != nil {
		warning = fmt.Sprintf("storage deletion failed: %s", storageErr)
	}
	return result, warning, nil
}

// --- Admin methods ---

// ListAllPhotos returns a paginated list of all photos (admin,
// uncached).
func (s *PhotoService) ListAllPhotos(ctx context.Context, page, limit int) ([]PhotoDTO, int64, error) {
	photos, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photos: %w", err)
	}
	return toPhotoDTOs(photos), total, nil
}

// GetPhotoStats returns aggregate photo statistics (admin).
func (s *PhotoService) GetPhotoStats(ctx context.Context) (*PhotoStatsDTO, error) {
	counts, err := s.repo.CountByVisibility(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &PhotoStatsDTO{TotalPhotos: total, ByVisibility: counts}, nil
}

// PurgeOwner removes every photo owned by the given user, blobs
// best-effort. Driven by the user-deleted event consumer.
func (s *PhotoService) PurgeOwner(ctx context.Context, ownerID uuid.UUID) error {
	photos, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return err
	}

	for _, p := range photos {
		albums := s.containingAlbums(ctx, p.ID())
		s.deleteBlob(ctx, p.ImageURL())
		if err := s.repo.Delete(ctx, p.ID()); err != nil {
			return err
		}
		s.inv.PhotoMutated(ctx, ownerID, p.ID())
		s.invalidateAlbumViews(ctx, albums)
	}
	s.inv.GlobalPurge(ctx)

	s.logger.Info("purged photos for deleted user",
		zap.String("owner_id", ownerID.String()),
		zap.Int("count", len(photos)),
	)
	return nil
}

// --- Helpers ---

func (s *PhotoService) deleteBlob(ctx context.Context, url string) {
	if err := s.store.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete blob", zap.String("url", url), zap.Error(err))
	}
}

// invalidateAlbumViews clears every cached view of the given albums.
// The owners' list pages carry per-album photo counts, so they go
// stale along with the detail payloads when membership changes.
func (s *PhotoService) invalidateAlbumViews(ctx context.Context, albums []*albumDomain.Album) {
	for _, a := range albums {
		s.inv.AlbumMutated(ctx, a.OwnerID(), a.ID())
	}
}

// containingAlbums enumerates the albums a photo belongs to. A failed
// lookup degrades to no album invalidation; those views expire by TTL.
func (s *PhotoService) containingAlbums(ctx context.Context, photoID uuid.UUID) []*albumDomain.Album {
	albums, err := s.albumRepo.FindByPhotoID(ctx, photoID)
	if err != nil {
		s.logger.Warn("failed to enumerate albums for invalidation",
			zap.String("photo_id", photoID.String()),
			zap.Error(err),
		)
		return nil
	}
	return albums
}

func (s *PhotoService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent("photovault", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func canReadDTO(actor policy.Actor, dto PhotoDTO) bool {
	return policy.CanRead(actor, dtoOwned{dto})
}

// dtoOwned adapts a cached payload to the policy contract so the gate
// runs without refetching the entity.
type dtoOwned struct{ dto PhotoDTO }

func (d dtoOwned) OwnerID() uuid.UUID { return d.dto.OwnerID }
func (d dtoOwned) IsPublic() bool {
	return d.dto.Visibility == string(photoDomain.VisibilityPublic)
}

func defaultVisibility(v string) string {
	if v == "" {
		return string(photoDomain.VisibilityPublic)
	}
	return v
}

func toPhotoDTO(p *photoDomain.Photo) PhotoDTO {
	return PhotoDTO{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Visibility:  string(p.Visibility()),
		ImageURL:    p.ImageURL(),
		OwnerID:     p.OwnerID(),
		UploadedAt:  p.UploadedAt(),
	}
}

func toPhotoDTOs(photos []*photoDomain.Photo) []PhotoDTO {
	dtos := make([]PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos
}
