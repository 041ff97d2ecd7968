package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Default bounds for task titles.
const (
	DefaultTitleMinLength = 1
	DefaultTitleMaxLength = 255
)

// TitleLimits bounds the length of a task title, counted in characters.
type TitleLimits struct {
	Min int
	Max int
}

// DefaultTitleLimits returns the 1..255 character bounds.
func DefaultTitleLimits() TitleLimits {
	return TitleLimits{Min: DefaultTitleMinLength, Max: DefaultTitleMaxLength}
}

// CheckTitle returns a validation error when title is outside the limits.
func (l TitleLimits) CheckTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < l.Min || n > l.Max {
		return NewValidationError("title",
			fmt.Sprintf("must be between %d and %d characters", l.Min, l.Max), ErrTitleLength)
	}
	return nil
}

// Task is a unit of work created by one user, assigned to one or more
// responsible users and optionally watched by auditors.
//
// A task is OPEN while IsActive is true and CLOSED afterwards. CloseDate is
// nil exactly while the task is open.
type Task struct {
	ID             int64
	Title          string
	Description    *string
	IsActive       bool
	CreatorID      int64
	Creator        UserRef
	ExpirationDate *time.Time
	CreateDate     time.Time
	UpdateDate     time.Time
	CloseDate      *time.Time
	Responsibles   []UserRef
	Auditors       []UserRef
}

// NewTask builds an open task owned by creatorID. Associations are resolved
// and attached by the caller.
func NewTask(creatorID int64, title string, description *string, expiration *time.Time, now time.Time) *Task {
	now = now.UTC()
	return &Task{
		Title:          title,
		Description:    description,
		IsActive:       true,
		CreatorID:      creatorID,
		ExpirationDate: utcPtr(expiration),
		CreateDate:     now,
		UpdateDate:     now,
	}
}

// IsExpired reports whether the task has an expiration date strictly before now.
func (t *Task) IsExpired(now time.Time) bool {
	return t.ExpirationDate != nil && t.ExpirationDate.Before(now)
}

// IsClosed reports whether the task has been closed.
func (t *Task) IsClosed() bool {
	return !t.IsActive
}

// Close moves an open task to CLOSED. It returns true when the transition
// happened and false when the task was already closed; the close date is
// set exactly once.
func (t *Task) Close(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	closed := now.UTC()
	t.IsActive = false
	t.CloseDate = &closed
	return true
}

// Touch refreshes UpdateDate. It never moves the timestamp backwards.
func (t *Task) Touch(now time.Time) {
	now = now.UTC()
	if now.After(t.UpdateDate) {
		t.UpdateDate = now
	}
}

// Validate checks the scalar fields of the task.
func (t *Task) Validate(limits TitleLimits) error {
	if err := limits.CheckTitle(t.Title); err != nil {
		return err
	}
	if t.CreatorID <= 0 {
		return NewValidationError("creator_id", "must reference a user", ErrInvalidID)
	}
	if t.IsActive != (t.CloseDate == nil) {
		return NewValidationError("close_date", "must be set exactly when the task is closed", nil)
	}
	return nil
}

// ApplyPatch applies the present scalar fields of p. Association fields are
// left to the caller because they need id resolution. finished=true closes
// the task together with the other changes; finished=false never reopens it.
// It returns true when this call closed the task.
func (t *Task) ApplyPatch(p TaskPatch, now time.Time) bool {
	if title, ok := p.Title.Get(); ok {
		t.Title = title
	}
	if p.Description.IsPresent() {
		if desc, ok := p.Description.Get(); ok {
			t.Description = &desc
		} else {
			t.Description = nil
		}
	}
	if p.ExpirationDate.IsPresent() {
		if exp, ok := p.ExpirationDate.Get(); ok {
			t.ExpirationDate = utcPtr(&exp.Time)
		} else {
			t.ExpirationDate = nil
		}
	}
	if creatorID, ok := p.CreatorID.Get(); ok {
		t.CreatorID = creatorID
	}

	closed := false
	if finished, ok := p.Finished.Get(); ok && finished {
		closed = t.Close(now)
	}
	t.Touch(now)
	return closed
}

// ResponsibleIDs returns the ids of the responsible users.
func (t *Task) ResponsibleIDs() []int64 {
	return refIDs(t.Responsibles)
}

// AuditorIDs returns the ids of the auditors.
func (t *Task) AuditorIDs() []int64 {
	return refIDs(t.Auditors)
}

func refIDs(refs []UserRef) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
