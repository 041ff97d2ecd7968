// Package api handles incoming HTTP requests, request validation and
// response formatting for the task tracker. Handlers translate HTTP concerns
// into calls on the task and user services and map their errors to status
// codes without leaking internal details.
package api
