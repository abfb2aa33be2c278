// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between the task store, the inference
// model, and the background dispatcher to fulfill analysis requests.
//
// The central piece is the AnalysisService, the state machine that moves an
// analysis task from processing to a terminal state: it records initial
// state, runs inference, persists the outcome, and schedules the callback
// notification off the request path. Services receive their dependencies
// through constructor injection and never touch infrastructure directly.
package service
