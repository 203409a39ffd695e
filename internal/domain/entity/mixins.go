package entity

import "time"

// AuditFields is embedded by entities that implement Auditable.
type AuditFields struct {
	DateAdded    *time.Time
	CreatedBy    *User
	DateModified *time.Time
	ModifiedBy   *User
}

func (a *AuditFields) SetDateAdded(t time.Time)    { a.DateAdded = &t }
func (a *AuditFields) SetCreatedBy(u *User)        { a.CreatedBy = u }
func (a *AuditFields) SetDateModified(t time.Time) { a.DateModified = &t }
func (a *AuditFields) SetModifiedBy(u *User)       { a.ModifiedBy = u }

// CheckoutFields is embedded by entities that implement Lockable.
// A lock never expires on its own.
type CheckoutFields struct {
	CheckedOut   *time.Time
	CheckedOutBy *User
}

func (c *CheckoutFields) GetCheckedOut() *time.Time  { return c.CheckedOut }
func (c *CheckoutFields) GetCheckedOutBy() *User     { return c.CheckedOutBy }
func (c *CheckoutFields) SetCheckedOut(t *time.Time) { c.CheckedOut = t }
func (c *CheckoutFields) SetCheckedOutBy(u *User)    { c.CheckedOutBy = u }
