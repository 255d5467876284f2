package photo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Visibility controls whether non-owners may read a photo.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// IsValid returns true if the visibility is recognized.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// ParseVisibility converts a string to a Visibility, returning an error if invalid.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !v.IsValid() {
		return "", fmt.Errorf("invalid visibility: %s", s)
	}
	return v, nil
}

// Photo is the aggregate root for an uploaded photo. The image URL is
// assigned only after a successful object-store upload and is never
// empty on a persisted photo.
type Photo struct {
	id          uuid.UUID
	title       string
	description string
	visibility  Visibility
	imageURL    string
	ownerID     uuid.UUID
	uploadedAt  time.Time
}

// NewPhoto creates a new photo record for an already-uploaded image.
func NewPhoto(ownerID uuid.UUID, title, description string, visibility Visibility, imageURL string) (*Photo, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if title == "" {
		return nil, fmt.Errorf("photo title is required")
	}
	if !visibility.IsValid() {
		return nil, fmt.Errorf("invalid visibility: %s", visibility)
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image URL is required")
	}

	return &Photo{
		id:          uuid.New(),
		title:       title,
		description: description,
		visibility:  visibility,
		imageURL:    imageURL,
		ownerID:     ownerID,
		uploadedAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Photo from persistence (no validation).
func Reconstruct(id, ownerID uuid.UUID, title, description string, visibility Visibility, imageURL string, uploadedAt time.Time) *Photo {
	return &Photo{
		id:          id,
		title:       title,
		description: description,
		visibility:  visibility,
		imageURL:    imageURL,
		ownerID:     ownerID,
		uploadedAt:  uploadedAt,
	}
}

// --- Getters ---

func (p *Photo) ID() uuid.UUID          { return p.id }
func (p *Photo) Title() string          { return p.title }
func (p *Photo) Description() string    { return p.description }
func (p *Photo) Visibility() Visibility { return p.visibility }
func (p *Photo) ImageURL() string       { return p.imageURL }
func (p *Photo) OwnerID() uuid.UUID     { return p.ownerID }
func (p *Photo) UploadedAt() time.Time  { return p.uploadedAt }

// IsPublic returns true if any actor may read the photo.
func (p *Photo) IsPublic() bool {
	return p.visibility == VisibilityPublic
}

// IsOwnedBy checks if the photo belongs to the given owner.
func (p *Photo) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// Update applies partial updates to the photo metadata. Validation
// runs before any field changes so a rejected update leaves the
// aggregate untouched.
func (p *Photo) Update(title, description string, visibility Visibility) error {
	if visibility != "" && !visibility.IsValid() {
		return fmt.Errorf("invalid visibility: %s", visibility)
	}
	if title != "" {
		p.title = title
	}
	if description != "" {
		p.description = description
	}
	if visibility != "" {
		p.visibility = visibility
	}
	return nil
}

// ReplaceImage swaps the stored asset reference after a successful
// re-upload. The URL is never cleared.
func (p *Photo) ReplaceImage(imageURL string) error {
	if imageURL == "" {
		return fmt.Errorf("image URL is required")
	}
	p.imageURL = imageURL
	return nil
}
