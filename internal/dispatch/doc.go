// Package dispatch executes spoken commands against the backend.
//
// A dispatch runs the whole resolution pipeline for one command:
//
//	target ──▶ resolver ──▶ device record
//	action ──▶ intent table ──▶ primitive + params
//	primitive ──▶ capability profile ──▶ prefixed primitive
//	                    │
//	                    ▼
//	          transport.Invoke (bounded, retried once)
//
// Failure handling is deliberately narrow. A transient transport failure
// earns exactly one retry after a fixed backoff. A missing device — the
// resolver finds nothing, or the backend rejects an ID the snapshot still
// carries — earns exactly one registry self-heal: refresh the snapshot and
// re-run the pipeline. Everything else fails immediately with a classified
// Error whose advisory can be spoken straight back to the user.
//
// Completed and failed dispatches fan out to optional sinks: a history
// recorder, a telemetry observer, and an event notifier. Sinks never block
// or fail a dispatch.
package dispatch
