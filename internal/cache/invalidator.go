package cache

import (
	"context"

	"github.com/google/uuid"
)

// Invalidator enumerates, for every entity mutation, the complete set
// of cache keys whose content could depend on that entity, and deletes
// them synchronously before the mutating operation returns.
//
// List views are paginated and the layer does not track which pages
// exist, so invalidation clears a bounded window of candidate pages
// (pageWindow). Pages beyond the window may stay stale until TTL
// expiry; that is the stated staleness bound, not a bug.
type Invalidator struct {
	store      *Store
	pageWindow int
}

// NewInvalidator creates an Invalidator clearing the first pageWindow
// list pages on each mutation.
func NewInvalidator(store *Store, pageWindow int) *Invalidator {
	if pageWindow < 1 {
		pageWindow = 1
	}
	return &Invalidator{store: store, pageWindow: pageWindow}
}

// PageWindow returns the bounded page-invalidation window.
func (i *Invalidator) PageWindow() int {
	return i.pageWindow
}

// PhotoMutated clears every key that could hold stale data after a
// photo owned by ownerID is created, updated or deleted.
func (i *Invalidator) PhotoMutated(ctx context.Context, ownerID, photoID uuid.UUID) {
	keys := make([]string, 0, 2*i.pageWindow+3)
	for page := 1; page <= i.pageWindow; page++ {
		keys = append(keys,
			KeyPhotoList(ownerID, page),
			KeyPhotoListAnon(page),
		)
	}
	keys = append(keys,
		KeyPhotoDetail(photoID),
		KeyMyPhotos(ownerID),
		KeyPublicPhotos(),
	)
	i.store.Delete(ctx, keys...)
}

// AlbumMutated clears every key that could hold stale data after an
// album owned by ownerID is created, updated, deleted, or has its
// membership changed.
func (i *Invalidator) AlbumMutated(ctx context.Context, ownerID, albumID uuid.UUID) {
	keys := make([]string, 0, i.pageWindow+2)
	for page := 1; page <= i.pageWindow; page++ {
		keys = append(keys, KeyAlbumList(ownerID, page))
	}
	keys = append(keys,
		KeyAlbumDetail(albumID, AlbumScopeOwner),
		KeyAlbumDetail(albumID, AlbumScopePublic),
	)
	i.store.Delete(ctx, keys...)
}

// GlobalPurge clears the anonymous and public-scoped keys
// unconditionally. Admin bulk actions use it because the affected
// viewer set is unknown ahead of time.
func (i *Invalidator) GlobalPurge(ctx context.Context) {
	keys := make([]string, 0, i.pageWindow+1)
	for page := 1; page <= i.pageWindow; page++ {
		keys = append(keys, KeyPhotoListAnon(page))
	}
	keys = append(keys, KeyPublicPhotos())
	i.store.Delete(ctx, keys...)
}
