package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskPatchValidate(t *testing.T) {
	limits := DefaultTitleLimits()

	tests := []struct {
		name    string
		patch   TaskPatch
		wantErr error
	}{
		{name: "empty patch", patch: TaskPatch{}},
		{name: "valid title", patch: TaskPatch{Title: Set("Fine")}},
		{name: "null title", patch: TaskPatch{Title: Null[string]()}, wantErr: ErrValidation},
		{name: "empty title", patch: TaskPatch{Title: Set("")}, wantErr: ErrTitleLength},
		{name: "null creator", patch: TaskPatch{CreatorID: Null[int64]()}, wantErr: ErrInvalidID},
		{name: "zero creator", patch: TaskPatch{CreatorID: Set(int64(0))}, wantErr: ErrInvalidID},
		{name: "empty responsibles", patch: TaskPatch{Responsibles: Set([]int64{})}, wantErr: ErrNoResponsibles},
		{name: "null responsibles", patch: TaskPatch{Responsibles: Null[[]int64]()}, wantErr: ErrNoResponsibles},
		{name: "negative responsible", patch: TaskPatch{Responsibles: Set([]int64{1, -2})}, wantErr: ErrInvalidID},
		{name: "empty auditors clears", patch: TaskPatch{Auditors: Set([]int64{})}},
		{name: "null auditors clears", patch: TaskPatch{Auditors: Null[[]int64]()}},
		{name: "zero auditor", patch: TaskPatch{Auditors: Set([]int64{0})}, wantErr: ErrInvalidID},
		{name: "null finished", patch: TaskPatch{Finished: Null[bool]()}, wantErr: ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate(limits)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskPatchAuditorIDs(t *testing.T) {
	ids, ok := TaskPatch{}.AuditorIDs()
	assert.False(t, ok)
	assert.Nil(t, ids)

	ids, ok = TaskPatch{Auditors: Null[[]int64]()}.AuditorIDs()
	assert.True(t, ok)
	assert.Empty(t, ids)

	ids, ok = TaskPatch{Auditors: Set([]int64{4, 5})}.AuditorIDs()
	assert.True(t, ok)
	assert.Equal(t, []int64{4, 5}, ids)
}
