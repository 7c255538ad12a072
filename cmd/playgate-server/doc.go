// Package main provides the entry point for playgate-server.
//
// playgate-server is the front door of the game service: it connects to
// storage, then serves the static client, the authenticated game routes and
// the real-time channel on a single listener.
package main
