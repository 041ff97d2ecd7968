package domain

// TaskPatch is a partial update of a task. Only present fields are applied.
//
// Responsibles, when present, replaces the whole set and may not be null or
// empty. Auditors, when present, replaces the whole set; null or an empty
// list clears it.
type TaskPatch struct {
	Title          Field[string]    `json:"title"`
	Description    Field[string]    `json:"description"`
	ExpirationDate Field[Timestamp] `json:"expiration_date"`
	CreatorID      Field[int64]     `json:"creator_id"`
	Responsibles   Field[[]int64]   `json:"responsibles"`
	Auditors       Field[[]int64]   `json:"auditors"`
	Finished       Field[bool]      `json:"finished"`
}

// Validate checks the present fields of the patch.
func (p TaskPatch) Validate(limits TitleLimits) error {
	if p.Title.IsPresent() {
		title, ok := p.Title.Get()
		if !ok {
			return NewValidationError("title", "cannot be null", nil)
		}
		if err := limits.CheckTitle(title); err != nil {
			return err
		}
	}

	if p.CreatorID.IsPresent() {
		id, ok := p.CreatorID.Get()
		if !ok || id <= 0 {
			return NewValidationError("creator_id", "must be a positive user id", ErrInvalidID)
		}
	}

	if p.Responsibles.IsPresent() {
		ids, ok := p.Responsibles.Get()
		if !ok || len(ids) == 0 {
			return NewValidationError("responsibles", "must contain at least one user id", ErrNoResponsibles)
		}
		if err := checkIDs("responsibles", ids); err != nil {
			return err
		}
	}

	if ids, ok := p.Auditors.Get(); ok {
		if err := checkIDs("auditors", ids); err != nil {
			return err
		}
	}

	if p.Finished.IsNull() {
		return NewValidationError("finished", "cannot be null", nil)
	}

	return nil
}

// ChangesCreator reports whether the patch reassigns the task creator.
func (p TaskPatch) ChangesCreator() bool {
	return p.CreatorID.IsPresent()
}

// AuditorIDs returns the replacement auditor set and whether one was given.
// A null value yields an empty set.
func (p TaskPatch) AuditorIDs() ([]int64, bool) {
	if !p.Auditors.IsPresent() {
		return nil, false
	}
	ids, _ := p.Auditors.Get()
	return ids, true
}

func checkIDs(field string, ids []int64) error {
	for _, id := range ids {
		if id <= 0 {
			return NewValidationError(field, "user ids must be positive", ErrInvalidID)
		}
	}
	return nil
}
