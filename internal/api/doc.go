// Package api implements the HTTP delivery layer: request decoding and
// validation, the /analyze and /result endpoints, and translation of
// service errors to HTTP responses. Handlers stay thin; the task
// lifecycle lives in internal/service.
package api
