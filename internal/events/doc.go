// Package events provides the audit event types and the in-process emitter.
//
// Services emit a TaskEvent after a mutating operation commits. Handlers
// registered on the emitter (a structured log line, and optionally a NATS
// publisher) receive every event. Handler failures are reported to the
// caller but never undo the committed change.
//
// The primary components are:
// - TaskEvent: an audit record of a task lifecycle change
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
// - AsyncDispatcher: queues events for a slow handler such as the NATS publisher
package events
