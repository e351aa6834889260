// Package enginelog is the engine's logging surface. Nothing in the
// retrieved pack imports a structured logging library (no zap/zerolog/
// logrus anywhere across any example's go.mod), and the teacher's own
// modules favor direct stdlib log/fmt calls gated by a verbosity flag
// (see vm_stack_manager.go's `if false { // debugging }` print guards).
// enginelog follows that: a thin wrapper over the standard log package
// with leveled helpers gated by a package-level Verbose switch.
package enginelog

import "log"

// Verbose gates Debugf output. Off by default, matching the teacher's
// debug prints being compiled-out (`if false`) rather than
// runtime-configurable.
var Verbose = false

// Debugf logs only when Verbose is true.
func Debugf(format string, args ...interface{}) {
	if Verbose {
		log.Printf("[vex debug] "+format, args...)
	}
}

// Warnf always logs, for conditions worth surfacing regardless of
// verbosity (e.g. a sticky error latch, an arena compaction).
func Warnf(format string, args ...interface{}) {
	log.Printf("[vex warn] "+format, args...)
}
