// Package natsbus publishes task audit events to NATS.
//
// Each event is encoded as JSON and published on "<prefix>.<event type>",
// for example "tasktracker.task.closed".
package natsbus
