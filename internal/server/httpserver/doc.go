// Package httpserver provides the HTTP surface of playgate.
//
// A request passes through a fixed chain before dispatch:
//
//   - ambient: response tracking, Recover, RequestID, Trace, Metrics, Audit,
//     optional RateLimit
//   - admission: BodyParser, Cookies, CORS
//   - WithStorage, then the Dispatcher
//
// The Dispatcher tries its stages in order (protected table, static files,
// public, password recovery, authenticated) and falls back to NotFound.
// Handler errors, chain rejections and panics all end in the
// ErrorTranslator.
//
// The Server binds its listener only once the storage gate is Connected.
package httpserver
