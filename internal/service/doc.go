// Package service contains the application use cases: the task repository
// service and the user directory.
//
// Services coordinate domain rules, authorization and persistence. Every
// mutating operation runs inside one store.Transactor unit of work and
// uses only the transaction-bound stores it is handed. Audit events are
// emitted after commit and never undo a committed change.
//
// Error handling:
//   - Expected conditions are returned as sentinel errors (domain.ErrForbidden,
//     store.ErrTaskNotFound, ErrInvalidCredentials, ...)
//   - Validation failures are *domain.ValidationError values
//   - Unexpected persistence failures are wrapped in TaskServiceError
//   - The API layer maps all of these with errors.Is
package service
