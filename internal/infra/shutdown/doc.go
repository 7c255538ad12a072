// Package shutdown provides graceful shutdown handling.
//
// A Handler waits for SIGINT/SIGTERM (or a programmatic Trigger, used when a
// listener fails) and runs the registered hooks in reverse registration
// order under a shared timeout.
package shutdown
