package entity

import "time"

// Optional capabilities an entity may implement. The lifecycle model checks
// for them with type assertions and skips whatever an entity does not support.

// Identifiable entities expose their persisted id. Zero means the entity is new.
type Identifiable interface {
	GetID() int64
}

// Auditable entities record who created or last modified them, and when.
type Auditable interface {
	SetDateAdded(t time.Time)
	SetCreatedBy(u *User)
	SetDateModified(t time.Time)
	SetModifiedBy(u *User)
}

// Lockable entities carry an advisory checkout lock.
type Lockable interface {
	GetCheckedOut() *time.Time
	GetCheckedOutBy() *User
	SetCheckedOut(t *time.Time)
	SetCheckedOutBy(u *User)
}

// Publishable entities can be toggled between published and unpublished.
type Publishable interface {
	GetPublishStatus() PublishStatus
	SetIsPublished(v bool)
}

// ClockedPublishable entities derive their publish status against a caller's
// clock instead of the wall clock.
type ClockedPublishable interface {
	PublishStatusAt(now time.Time) PublishStatus
}

// Named entities have a display name.
type Named interface {
	GetName() string
}

// DeletedIDSetter receives the id an entity had before it was removed, so
// post-delete listeners can still refer to it.
type DeletedIDSetter interface {
	SetDeletedID(id int64)
}
