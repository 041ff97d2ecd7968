package domain

import (
	"strings"
	"time"
)

// TaskFilter selects tasks. Every non-nil criterion must match; a filter
// with no criteria matches every task.
type TaskFilter struct {
	// Title matches case-insensitively anywhere in the task title.
	Title *string
	// StartDate is inclusive: create_date >= StartDate.
	StartDate *time.Time
	// EndDate is an inclusive calendar day: create_date < EndDate + 1 day.
	EndDate   *time.Time
	CreatorID *int64
	// Expired compares the expiration date against Now.
	Expired *bool
	// Now is the reference instant for Expired. Callers set it once per
	// request so that the query and Task.IsExpired agree.
	Now time.Time
}

// LikeEscape is the escape character used in TitlePattern.
const LikeEscape = `\`

// TitlePattern returns a LIKE pattern matching Title as a substring, with
// LIKE metacharacters escaped. The second result is false when no title
// criterion is set.
func (f TaskFilter) TitlePattern() (string, bool) {
	if f.Title == nil {
		return "", false
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(*f.Title) + "%", true
}

// EndBound returns the exclusive upper bound for create_date.
func (f TaskFilter) EndBound() (time.Time, bool) {
	if f.EndDate == nil {
		return time.Time{}, false
	}
	return f.EndDate.UTC().AddDate(0, 0, 1), true
}

// ReferenceTime returns Now, or the current time if Now is unset.
func (f TaskFilter) ReferenceTime() time.Time {
	if f.Now.IsZero() {
		return time.Now().UTC()
	}
	return f.Now.UTC()
}
