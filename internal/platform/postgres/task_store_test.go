package postgres

import (
	"testing"
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/stretchr/testify/assert"
)

func domainFilterAll() domain.TaskFilter {
	title := "report"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	creator := int64(4)
	expired := true
	return domain.TaskFilter{
		Title:     &title,
		StartDate: &start,
		EndDate:   &end,
		CreatorID: &creator,
		Expired:   &expired,
		Now:       end,
	}
}

func domainFilterNone() domain.TaskFilter {
	return domain.TaskFilter{}
}

func TestBuildTaskFilter(t *testing.T) {
	where, args := buildTaskFilter(domainFilterAll())
	assert.Len(t, where, 5)
	assert.Len(t, args, 5)
	assert.Contains(t, where[0], "ILIKE $1")
	assert.Contains(t, where[4], "expiration_date IS NOT NULL")

	where, args = buildTaskFilter(domainFilterNone())
	assert.Empty(t, where)
	assert.Empty(t, args)
}
