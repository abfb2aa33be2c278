// Package task provides background task processing through a bounded
// worker pool. The HTTP layer uses it to carry webhook deliveries off the
// request path: a submitted task runs to completion even after the
// response that scheduled it has been sent.
package task
