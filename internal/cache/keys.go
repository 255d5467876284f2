package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Cache keys live in one place so every dimension that shapes a payload
// (resource kind, scoping actor, pagination, entity identity) is encoded
// consistently. Two requests with different payloads never share a key;
// two requests with identical payloads always do.

// KeyPhotoList is the viewer-scoped paginated photo feed.
func KeyPhotoList(viewerID uuid.UUID, page int) string {
	return fmt.Sprintf("photos:list:user:%s:page:%d", viewerID, page)
}

// KeyPhotoListAnon is the anonymous paginated photo feed.
func KeyPhotoListAnon(page int) string {
	return fmt.Sprintf("photos:list:anon:page:%d", page)
}

// KeyPhotoDetail is a single photo view. The payload does not vary per
// viewer (policy gates access before the cache is consulted), so the
// key carries only the entity identity.
func KeyPhotoDetail(photoID uuid.UUID) string {
	return fmt.Sprintf("photos:detail:%s", photoID)
}

// KeyMyPhotos is the owner's full photo listing.
func KeyMyPhotos(ownerID uuid.UUID) string {
	return fmt.Sprintf("photos:mine:user:%s", ownerID)
}

// KeyPublicPhotos is the global public photo listing.
func KeyPublicPhotos() string {
	return "photos:public"
}

// KeyAlbumList is the owner-scoped paginated album listing.
func KeyAlbumList(ownerID uuid.UUID, page int) string {
	return fmt.Sprintf("albums:list:user:%s:page:%d", ownerID, page)
}

// AlbumViewScope collapses viewers into the two payload classes an
// album detail can produce: owners and admins see every photo, everyone
// else sees only the public ones.
type AlbumViewScope string

const (
	AlbumScopeOwner  AlbumViewScope = "owner"
	AlbumScopePublic AlbumViewScope = "public"
)

// KeyAlbumDetail is a single album view for the given payload class.
func KeyAlbumDetail(albumID uuid.UUID, scope AlbumViewScope) string {
	return fmt.Sprintf("albums:detail:%s:viewer:%s", albumID, scope)
}
