// Package notifier builds and delivers signed webhook callbacks reporting
// a task's terminal outcome. Delivery is best effort: failures are logged
// and swallowed, never retried, and never surface to the request path. The
// query interface is the durable fallback for callers that miss a callback.
package notifier
