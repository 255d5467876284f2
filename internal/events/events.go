package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicPhotoEvents = "photovault.photo.events"
	TopicUserEvents  = "photovault.user.events"
)

// Event types.
const (
	PhotoUploaded  = "photo.uploaded"
	PhotoDeleted   = "photo.deleted"
	PhotoFlagged   = "photo.flagged"
	UserRegistered = "user.registered"
	UserDeleted    = "user.deleted"
)

// PhotoUploadedEvent is emitted after a photo upload commits.
type PhotoUploadedEvent struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Visibility string    `json:"visibility"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PhotoDeletedEvent is emitted after a photo record is deleted.
type PhotoDeletedEvent struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PhotoFlaggedEvent is emitted when an admin force-deletes a photo.
type PhotoFlaggedEvent struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	AdminID    uuid.UUID `json:"admin_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserRegisteredEvent is emitted after account creation.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeletedEvent is consumed from the user topic; the service purges
// all content owned by the deleted account.
type UserDeletedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
