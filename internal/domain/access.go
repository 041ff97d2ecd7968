package domain

// CanModifyOrDelete reports whether actor may change or remove task.
func CanModifyOrDelete(actor *User, task *Task) bool {
	if actor == nil || task == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == task.CreatorID
}

// CanReassignCreator reports whether actor may set a new task creator.
func CanReassignCreator(actor *User) bool {
	return actor != nil && actor.IsSuperuser
}

// AuthorizeModify returns ErrForbidden unless actor may modify task.
func AuthorizeModify(actor *User, task *Task) error {
	if !CanModifyOrDelete(actor, task) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeCreatorChange returns ErrForbidden unless actor may reassign creators.
func AuthorizeCreatorChange(actor *User) error {
	if !CanReassignCreator(actor) {
		return ErrForbidden
	}
	return nil
}
