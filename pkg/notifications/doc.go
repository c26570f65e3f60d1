// Package notifications implements the campus notification pipeline on top of
// pkg/queue: deciding who gets notified, persisting notifications in the
// worker, and the access layer end users read them through.
//
// # Flow
//
//	business event ─▶ Dispatcher ─▶ queue.Producer ─▶ Broker ─▶ queue.Worker ─▶ Deliverer ─▶ Store
//	                                                                                          ▲
//	                                                               Service (access layer) ────┘
//
// The Dispatcher resolves @mentions through pkg/mention, filters recipients
// with the preference gate (ShouldSend) and enqueues one job per recipient.
// The Deliverer is the worker-side handler: it validates the JobPayload and
// writes the Notification. Invalid payloads fail permanently, store failures
// are retried by the worker.
//
// # Access layer
//
// Service methods read the requester from the context (WithRequester). Every
// operation runs fetch, then authorize, then mutate, so an unknown id is always
// reported as not found and never as forbidden. Errors are *apperr.Error values
// and callers branch on apperr.KindOf.
//
// # Storage
//
// Store and PreferenceStore have three implementations: MemoryStore for tests
// and local runs, PostgresStore (pgx, schema in the embedded Migrations) and
// MongoStore.
package notifications
