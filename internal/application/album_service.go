package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitso-en/photovault/internal/cache"
	"github.com/sitso-en/photovault/internal/config"
	"github.com/sitso-en/photovault/internal/domain"
	albumDomain "github.com/sitso-en/photovault/internal/domain/album"
	photoDomain "github.com/sitso-en/photovault/internal/domain/photo"
	"github.com/sitso-en/photovault/internal/policy"
)

// CreateAlbumRequest holds the data to create an album.
type CreateAlbumRequest struct {
	Title       string
	Description string
}

// UpdateAlbumRequest holds partial album metadata updates.
type UpdateAlbumRequest struct {
	Title       string
	Description string
}

// AlbumDTO is the API response representation of an album.
type AlbumDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	PhotoCount  int64     `json:"photo_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AlbumDetailDTO is an album together with the member photos the
// requesting viewer may see.
type AlbumDetailDTO struct {
	AlbumDTO
	Photos []PhotoDTO `json:"photos"`
}

// AlbumService orchestrates album use cases. Album detail payloads come
// in exactly two shapes: the owner (or an admin) sees every member
// photo, everyone else sees only the public ones. Caching keys off that
// scope rather than the viewer identity, which keeps the invalidation
// fan-out enumerable.
type AlbumService struct {
	repo      albumDomain.AlbumRepository
	photoRepo photoDomain.PhotoRepository
	cache     *cache.Store
	inv       *cache.Invalidator
	cacheCfg  config.CacheConfig
	logger    *zap.Logger
}

// NewAlbumService creates a new AlbumService.
func NewAlbumService(
	repo albumDomain.AlbumRepository,
	photoRepo photoDomain.PhotoRepository,
	cacheStore *cache.Store,
	inv *cache.Invalidator,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *AlbumService {
	return &AlbumService{
		repo:      repo,
		photoRepo: photoRepo,
		cache:     cacheStore,
		inv:       inv,
		cacheCfg:  cacheCfg,
		logger:    logger,
	}
}

// CreateAlbum creates an empty album owned by the actor.
func (s *AlbumService) CreateAlbum(ctx context.Context, actor policy.Actor, req CreateAlbumRequest) (*AlbumDTO, error) {
	if !actor.Authenticated {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	a, err := albumDomain.NewAlbum(actor.ID, req.Title, req.Description)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.inv.AlbumMutated(ctx, actor.ID, a.ID())

	s.logger.Info("album created",
		zap.String("album_id", a.ID().String()),
		zap.String("owner_id", actor.ID.String()),
	)

	dto := toAlbumDTO(a, 0)
	return &dto, nil
}

// ListAlbums returns the actor's own albums, paginated and cached.
func (s *AlbumService) ListAlbums(ctx context.Context, actor policy.Actor, page int) (*domain.PaginatedResult[AlbumDTO], error) {
	if !actor.Authenticated {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	key := cache.KeyAlbumList(actor.ID, page)
	result, err := cache.GetOrPopulate(ctx, s.cache, key, s.cacheCfg.TTL, func(ctx context.Context) (domain.PaginatedResult[AlbumDTO], error) {
		albums, total, err := s.repo.FindByOwnerID(ctx, actor.ID, page, DefaultPageLimit)
		if err != nil {
			return domain.PaginatedResult[AlbumDTO]{}, err
		}
		dtos, err := s.toAlbumDTOs(ctx, albums)
		if err != nil {
			return domain.PaginatedResult[AlbumDTO]{}, err
		}
		return domain.NewPaginatedResult(dtos, total, page, DefaultPageLimit), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAlbum returns the album with the member photos visible to the
// actor. Any actor may open any album; each contained photo's own
// visibility flag decides whether it appears in the payload.
func (s *AlbumService) GetAlbum(ctx context.Context, actor policy.Actor, albumID uuid.UUID) (*AlbumDetailDTO, error) {
	a, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return nil, err
	}

	scope := cache.AlbumScopePublic
	if actor.IsAdmin() || (actor.Authenticated && a.IsOwnedBy(actor.ID)) {
		scope = cache.AlbumScopeOwner
	}

	key := cache.KeyAlbumDetail(albumID, scope)
	detail, err := cache.GetOrPopulate(ctx, s.cache, key, s.cacheCfg.TTL, func(ctx context.Context) (AlbumDetailDTO, error) {
		photoIDs, err := s.repo.FindPhotoIDs(ctx, albumID)
		if err != nil {
			return AlbumDetailDTO{}, err
		}
		photos, err := s.photoRepo.FindByIDs(ctx, photoIDs)
		if err != nil {
			return AlbumDetailDTO{}, err
		}

		visible := photos
		if scope == cache.AlbumScopePublic {
			visible = visible[:0:0]
			for _, p := range photos {
				if p.IsPublic() {
					visible = append(visible, p)
				}
			}
		}

		return AlbumDetailDTO{
			AlbumDTO: toAlbumDTO(a, int64(len(photoIDs))),
			Photos:   toPhotoDTOs(visible),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateAlbum applies metadata changes and invalidates the album's
// cached views.
func (s *AlbumService) UpdateAlbum(ctx context.Context, actor policy.Actor, albumID uuid.UUID, req UpdateAlbumRequest) (*AlbumDTO, error) {
	a, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if !policy.CanWrite(actor, a) {
		return nil, domain.NewForbiddenError("you cannot modify this album")
	}

	a.Update(req.Title, req.Description)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.inv.AlbumMutated(ctx, a.OwnerID(), a.ID())

	count, err := s.repo.CountPhotos(ctx, albumID)
	if err != nil {
		return nil, err
	}
	dto := toAlbumDTO(a, count)
	return &dto, nil
}

// DeleteAlbum removes an album and its membership links. Member photos
// themselves are untouched.
func (s *AlbumService) DeleteAlbum(ctx context.Context, actor policy.Actor, albumID uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return err
	}
	if !policy.CanWrite(actor, a) {
		return domain.NewForbiddenError("you cannot delete this album")
	}

	if err := s.repo.Delete(ctx, albumID); err != nil {
		return err
	}

	s.inv.AlbumMutated(ctx, a.OwnerID(), albumID)

	s.logger.Info("album deleted",
		zap.String("album_id", albumID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// AddPhoto links a photo into an album. Only photos the actor may read
// can be added; a duplicate pair surfaces as a conflict.
func (s *AlbumService) AddPhoto(ctx context.Context, actor policy.Actor, albumID, photoID uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return err
	}
	if !policy.CanWrite(actor, a) {
		return domain.NewForbiddenError("you cannot modify this album")
	}

	p, err := s.photoRepo.FindByID(ctx, photoID)
	if err != nil {
		return err
	}
	if !policy.CanRead(actor, p) {
		return domain.NewForbiddenError("you do not have access to this photo")
	}

	if err := s.repo.AddPhoto(ctx, albumID, photoID); err != nil {
		return err
	}

	s.inv.AlbumMutated(ctx, a.OwnerID(), albumID)
	return nil
}

// RemovePhoto unlinks a photo from an album. A pair that was never
// linked surfaces as not-found.
func (s *AlbumService) RemovePhoto(ctx context.Context, actor policy.Actor, albumID, photoID uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return err
	}
	if !policy.CanWrite(actor, a) {
		return domain.NewForbiddenError("you cannot modify this album")
	}

	if err := s.repo.RemovePhoto(ctx, albumID, photoID); err != nil {
		return err
	}

	s.inv.AlbumMutated(ctx, a.OwnerID(), albumID)
	return nil
}

// ListAllAlbums returns a paginated list of all albums (admin,
// uncached).
func (s *AlbumService) ListAllAlbums(ctx context.Context, page, limit int) ([]AlbumDTO, int64, error) {
	albums, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	dtos, err := s.toAlbumDTOs(ctx, albums)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// PurgeOwner deletes every album owned by the given user. Member
// photos are handled by the photo purge; only the albums and their
// links go here. Driven by the user-deleted event consumer.
func (s *AlbumService) PurgeOwner(ctx context.Context, ownerID uuid.UUID) error {
	purged := 0
	for {
		albums, _, err := s.repo.FindByOwnerID(ctx, ownerID, 1, DefaultPageLimit)
		if err != nil {
			return err
		}
		if len(albums) == 0 {
			break
		}
		for _, a := range albums {
			if err := s.repo.Delete(ctx, a.ID()); err != nil {
				return err
			}
			s.inv.AlbumMutated(ctx, ownerID, a.ID())
			purged++
		}
	}

	if purged > 0 {
		s.logger.Info("purged albums for deleted user",
			zap.String("owner_id", ownerID.String()),
			zap.Int("count", purged),
		)
	}
	return nil
}

// --- Helpers ---

func (s *AlbumService) toAlbumDTOs(ctx context.Context, albums []*albumDomain.Album) ([]AlbumDTO, error) {
	dtos := make([]AlbumDTO, len(albums))
	for i, a := range albums {
		count, err := s.repo.CountPhotos(ctx, a.ID())
		if err != nil {
			return nil, err
		}
		dtos[i] = toAlbumDTO(a, count)
	}
	return dtos, nil
}

func toAlbumDTO(a *albumDomain.Album, photoCount int64) AlbumDTO {
	return AlbumDTO{
		ID:          a.ID(),
		Title:       a.Title(),
		Description: a.Description(),
		OwnerID:     a.OwnerID(),
		PhotoCount:  photoCount,
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}
