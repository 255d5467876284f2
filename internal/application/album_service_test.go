package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitso-en/photovault/internal/cache"
	"github.com/sitso-en/photovault/internal/config"
	"github.com/sitso-en/photovault/internal/domain"
	userDomain "github.com/sitso-en/photovault/internal/domain/user"
	"github.com/sitso-en/photovault/internal/policy"
)

type albumFixture struct {
	svc      *AlbumService
	photoSvc *PhotoService
	albums   *fakeAlbumRepo
	backend  *memBackend
}

func newAlbumFixture(t *testing.T) *albumFixture {
	t.Helper()
	backend := newMemBackend()
	cacheStore := cache.NewStore(backend, zap.NewNop())
	photoRepo := newFakePhotoRepo()
	albumRepo := newFakeAlbumRepo()
	cfg := config.CacheConfig{TTL: 5 * time.Minute, TTLLong: time.Hour, PageWindow: 10}
	inv := cache.NewInvalidator(cacheStore, cfg.PageWindow)
	svc := NewAlbumService(albumRepo, photoRepo, cacheStore, inv, cfg, zap.NewNop())
	photoSvc := NewPhotoService(photoRepo, albumRepo, &fakeObjectStore{}, cacheStore, inv, nil, cfg, zap.NewNop())
	return &albumFixture{svc: svc, photoSvc: photoSvc, albums: albumRepo, backend: backend}
}

func TestCreateAlbum_RequiresAuthentication(t *testing.T) {
	f := newAlbumFixture(t)

	_, err := f.svc.CreateAlbum(context.Background(), policy.Anonymous(), CreateAlbumRequest{Title: "trip"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestAddPhoto_DuplicatePairIsConflict(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "trip"})
	require.NoError(t, err)
	photo, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:    "beach",
		FileName: "beach.png",
		Data:     []byte("png-bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddPhoto(ctx, owner, album.ID, photo.ID))

	err = f.svc.AddPhoto(ctx, owner, album.ID, photo.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestRemovePhoto_AbsentPairIsNotFound(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "trip"})
	require.NoError(t, err)
	photo, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:    "beach",
		FileName: "beach.png",
		Data:     []byte("png-bytes"),
	})
	require.NoError(t, err)

	err = f.svc.RemovePhoto(ctx, owner, album.ID, photo.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetAlbum_ScopesMemberPhotosToViewer(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)
	stranger := actorFor(userDomain.RoleUser)
	admin := actorFor(userDomain.RoleAdmin)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "mixed"})
	require.NoError(t, err)

	public, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:      "open",
		Visibility: "public",
		FileName:   "open.png",
		Data:       []byte("png-bytes"),
	})
	require.NoError(t, err)
	private, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:      "hidden",
		Visibility: "private",
		FileName:   "hidden.png",
		Data:       []byte("png-bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddPhoto(ctx, owner, album.ID, public.ID))
	require.NoError(t, f.svc.AddPhoto(ctx, owner, album.ID, private.ID))

	ownerView, err := f.svc.GetAlbum(ctx, owner, album.ID)
	require.NoError(t, err)
	assert.Len(t, ownerView.Photos, 2)

	adminView, err := f.svc.GetAlbum(ctx, admin, album.ID)
	require.NoError(t, err)
	assert.Len(t, adminView.Photos, 2)

	strangerView, err := f.svc.GetAlbum(ctx, stranger, album.ID)
	require.NoError(t, err)
	require.Len(t, strangerView.Photos, 1)
	assert.Equal(t, public.ID, strangerView.Photos[0].ID)

	anonView, err := f.svc.GetAlbum(ctx, policy.Anonymous(), album.ID)
	require.NoError(t, err)
	require.Len(t, anonView.Photos, 1)
	assert.Equal(t, public.ID, anonView.Photos[0].ID)
}

func TestGetAlbum_PhotoCountIgnoresViewerScope(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "mixed"})
	require.NoError(t, err)
	private, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:      "hidden",
		Visibility: "private",
		FileName:   "hidden.png",
		Data:       []byte("png-bytes"),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.AddPhoto(ctx, owner, album.ID, private.ID))

	anonView, err := f.svc.GetAlbum(ctx, policy.Anonymous(), album.ID)
	require.NoError(t, err)
	assert.Empty(t, anonView.Photos)
	assert.Equal(t, int64(1), anonView.PhotoCount)
}

func TestUpdateAlbum_InvalidatesCachedDetail(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "old title"})
	require.NoError(t, err)

	// Warm both detail scopes.
	_, err = f.svc.GetAlbum(ctx, owner, album.ID)
	require.NoError(t, err)
	_, err = f.svc.GetAlbum(ctx, policy.Anonymous(), album.ID)
	require.NoError(t, err)
	require.True(t, f.backend.has(cache.KeyAlbumDetail(album.ID, cache.AlbumScopeOwner)))
	require.True(t, f.backend.has(cache.KeyAlbumDetail(album.ID, cache.AlbumScopePublic)))

	_, err = f.svc.UpdateAlbum(ctx, owner, album.ID, UpdateAlbumRequest{Title: "new title"})
	require.NoError(t, err)

	assert.False(t, f.backend.has(cache.KeyAlbumDetail(album.ID, cache.AlbumScopeOwner)))
	assert.False(t, f.backend.has(cache.KeyAlbumDetail(album.ID, cache.AlbumScopePublic)))

	view, err := f.svc.GetAlbum(ctx, policy.Anonymous(), album.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", view.Title)
}

func TestDeleteAlbum_LeavesMemberPhotosIntact(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "trip"})
	require.NoError(t, err)
	photo, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:      "beach",
		Visibility: "public",
		FileName:   "beach.png",
		Data:       []byte("png-bytes"),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.AddPhoto(ctx, owner, album.ID, photo.ID))

	require.NoError(t, f.svc.DeleteAlbum(ctx, owner, album.ID))

	_, err = f.svc.GetAlbum(ctx, owner, album.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	got, err := f.photoSvc.GetPhoto(ctx, owner, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, got.ID)
}

func TestUpdateAlbum_ForbiddenForNonOwner(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)
	stranger := actorFor(userDomain.RoleUser)

	album, err := f.svc.CreateAlbum(ctx, owner, CreateAlbumRequest{Title: "trip"})
	require.NoError(t, err)

	_, err = f.svc.UpdateAlbum(ctx, stranger, album.ID, UpdateAlbumRequest{Title: "hijack"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestAddPhoto_RequiresReadAccessToPhoto(t *testing.T) {
	f := newAlbumFixture(t)
	ctx := context.Background()
	owner := actorFor(userDomain.RoleUser)
	admin := actorFor(userDomain.RoleAdmin)

	// An admin can write any album, but the private photo belongs to a
	// regular user and stays addable because admins read everything.
	album, err := f.svc.CreateAlbum(ctx, admin, CreateAlbumRequest{Title: "curated"})
	require.NoError(t, err)
	private, err := f.photoSvc.UploadPhoto(ctx, owner, UploadPhotoRequest{
		Title:      "hidden",
		Visibility: "private",
		FileName:   "hidden.png",
		Data:       []byte("png-bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddPhoto(ctx, admin, album.ID, private.ID))

	// A stranger cannot add someone else's private photo to their album.
	stranger := actorFor(userDomain.RoleUser)
	strangerAlbum, err := f.svc.CreateAlbum(ctx, stranger, CreateAlbumRequest{Title: "loot"})
	require.NoError(t, err)

	err = f.svc.AddPhoto(ctx, stranger, strangerAlbum.ID, private.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}
