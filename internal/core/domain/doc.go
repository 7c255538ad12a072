// Package domain defines the error values and credential claims shared by
// the playgate packages.
//
// Domain types carry no IO dependencies. HTTPError is the single error shape
// the HTTP layer knows how to translate into a status code.
package domain
