// Package handler provides the concrete route handlers of playgate.
//
// Handlers have the signature func(http.ResponseWriter, *http.Request) error
// and leave error formatting to the caller's error translator.
package handler
