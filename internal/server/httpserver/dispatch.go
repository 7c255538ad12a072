package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Stage is one step of the dispatcher. The first stage whose Match
// returns true serves the request.
type Stage interface {
	http.Handler
	Name() string
	Match(r *http.Request) bool
}

// Route is one entry of a RouteTable.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerFunc

	// RequireAuth gates this route alone. Entries of a gated table are
	// always authenticated.
	RequireAuth bool
}

// RouteTable is a named, ordered set of routes backed by a chi router.
type RouteTable struct {
	name       string
	gated      bool
	auth       Middleware
	mux        *chi.Mux
	translator *ErrorTranslator
	routes     []Route
}

// NewRouteTable creates an empty table.
func NewRouteTable(name string, t *ErrorTranslator) *RouteTable {
	return &RouteTable{
		name:       name,
		mux:        chi.NewRouter(),
		translator: t,
	}
}

// WithAuth sets the authentication middleware. When gated is true it runs
// once for every matched request of the table, before the route handler.
func (rt *RouteTable) WithAuth(auth Middleware, gated bool) *RouteTable {
	rt.auth = auth
	rt.gated = gated
	return rt
}

// Add registers routes in order. It panics on a route that requires auth
// in a table without an auth middleware.
func (rt *RouteTable) Add(routes ...Route) *RouteTable {
	for _, route := range routes {
		h := rt.translator.Handle(route.Handler)
		if route.RequireAuth && !rt.gated {
			if rt.auth == nil {
				panic(fmt.Sprintf("httpserver: route %s %s requires auth but table %q has none",
					route.Method, route.Pattern, rt.name))
			}
			h = rt.auth(h)
		}
		rt.mux.Method(route.Method, route.Pattern, h)
		rt.routes = append(rt.routes, route)
	}
	return rt
}

// Routes returns the registered routes in registration order.
func (rt *RouteTable) Routes() []Route {
	return append([]Route(nil), rt.routes...)
}

// Name implements Stage.
func (rt *RouteTable) Name() string { return rt.name }

// Gated reports whether the whole table sits behind the auth middleware.
func (rt *RouteTable) Gated() bool { return rt.gated }

// Match reports whether a route of the table matches method and path.
func (rt *RouteTable) Match(r *http.Request) bool {
	if len(rt.routes) == 0 {
		return false
	}
	return rt.mux.Match(chi.NewRouteContext(), r.Method, canonicalPath(r))
}

// ServeHTTP implements Stage. The table routes the canonical path on a
// fresh chi context so that an outer chi router cannot leak its state into
// it.
func (rt *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rctx := chi.NewRouteContext()
	rctx.RoutePath = canonicalPath(r)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	if rt.gated && rt.auth != nil {
		rt.auth(rt.mux).ServeHTTP(w, r)
		return
	}
	rt.mux.ServeHTTP(w, r)
}

func routePath(r *http.Request) string {
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// canonicalPath is routePath with dot segments and duplicate slashes
// removed. A trailing slash is kept. Every stage matches on this form, so
// "/x/../game.html" reaches the same route as "/game.html".
func canonicalPath(r *http.Request) string {
	p := routePath(r)
	clean := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && clean != "/" {
		clean += "/"
	}
	return clean
}

// Static serves files from a directory for GET and HEAD requests naming an
// existing file, or a directory holding index.html. Only canonical paths
// match, and dot-files are never served.
type Static struct {
	root  string
	files http.Handler
}

// NewStatic creates a Static stage rooted at dir.
func NewStatic(dir string) *Static {
	return &Static{
		root:  dir,
		files: http.FileServer(http.Dir(dir)),
	}
}

// Name implements Stage.
func (s *Static) Name() string { return "static" }

// Match implements Stage.
func (s *Static) Match(r *http.Request) bool {
	if s.root == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return false
	}
	// Non-canonical paths are left to the route tables, which see them in
	// canonical form.
	if r.URL.Path != canonicalPath(r) {
		return false
	}
	clean := path.Clean("/" + r.URL.Path)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	full := filepath.Join(s.root, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return info.Mode().IsRegular()
	}
	index, err := os.Stat(filepath.Join(full, "index.html"))
	return err == nil && index.Mode().IsRegular()
}

// ServeHTTP implements Stage.
func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.files.ServeHTTP(w, r)
}

// Dispatcher tries its stages in order and falls back to notFound.
type Dispatcher struct {
	stages   []Stage
	notFound http.Handler
}

// NewDispatcher creates a Dispatcher. A nil notFound uses NotFound().
func NewDispatcher(notFound http.Handler, stages ...Stage) *Dispatcher {
	if notFound == nil {
		notFound = NotFound()
	}
	return &Dispatcher{
		stages:   stages,
		notFound: notFound,
	}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, s := range d.stages {
		if s.Match(r) {
			setStage(r, s.Name())
			s.ServeHTTP(w, r)
			return
		}
	}
	setStage(r, "not_found")
	d.notFound.ServeHTTP(w, r)
}
