// Package realtime provisions the websocket channel that shares the HTTP
// listener. Connections are tracked by a Hub, kept alive with ping/pong and
// handed to a SessionManager.
package realtime
