package entity

import "time"

// PublishStatus is the derived publication state of a Publishable entity.
type PublishStatus string

const (
	StatusUnpublished PublishStatus = "unpublished"
	StatusPublished   PublishStatus = "published"
	StatusExpired     PublishStatus = "expired"
	StatusPending     PublishStatus = "pending"
)

// PublishFields is embedded by entities that have a publish flag and an
// optional publication window.
type PublishFields struct {
	IsPublished bool
	PublishUp   *time.Time
	PublishDown *time.Time
}

func (p *PublishFields) SetIsPublished(v bool) { p.IsPublished = v }

// PublishStatusAt derives the status from the flag and the window at now.
func (p *PublishFields) PublishStatusAt(now time.Time) PublishStatus {
	switch {
	case !p.IsPublished:
		return StatusUnpublished
	case p.PublishUp != nil && p.PublishUp.After(now):
		return StatusPending
	case p.PublishDown != nil && p.PublishDown.Before(now):
		return StatusExpired
	default:
		return StatusPublished
	}
}

func (p *PublishFields) GetPublishStatus() PublishStatus {
	return p.PublishStatusAt(time.Now())
}

// IsVisibleAt reports whether the entity should be shown publicly at now.
func (p *PublishFields) IsVisibleAt(now time.Time) bool {
	return p.PublishStatusAt(now) == StatusPublished
}
