// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The Task entity owns its own lifecycle (OPEN to CLOSED, never back) and the
// expiry predicate. TaskPatch carries partial updates whose fields distinguish
// "absent" from "explicitly null", and the access policy in access.go decides
// who may modify a task. Nothing in this package performs I/O.
package domain
