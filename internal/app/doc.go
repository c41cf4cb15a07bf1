// Package app encapsulates application lifecycle: it wires the logger, the
// configuration loader, the hook registry, and the run ledger into an App
// instance, and drives the run graph through the executor.
package app
