// Package registry is the glue between hook blocks in configuration and
// the compiled Go handlers that implement them.
//
// Hook modules register a factory for their input struct and a handler
// function keyed by the hook type string used in config files. At startup
// the registry is validated against the loaded model so that a typo'd hook
// type or a malformed handler signature fails before any trainer process is
// spawned.
package registry
