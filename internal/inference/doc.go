// Package inference defines the contract between the task orchestrator and
// the analysis models that execute tasks. It abstracts the details of model
// integration, allowing real model backends to be substituted for the
// keyword-matching reference implementation without touching the
// orchestrator.
package inference
