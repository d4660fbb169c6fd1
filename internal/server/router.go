package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ChiRouter implements [Router] on top of a [chi.Mux].
//
// Middleware added through Use wraps every route registered afterwards, in the order it was added.
type ChiRouter struct {
	mux         *chi.Mux
	middlewares []Middleware
}

// NewRouter creates a [ChiRouter] that recovers from handler panics.
func NewRouter() *ChiRouter {
	r := &ChiRouter{mux: chi.NewRouter()}
	r.mux.Use(middleware.Recoverer)
	return r
}

// Use adds [Middleware] to the stack applied to subsequently registered routes.
func (r *ChiRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path. Paths may contain chi URL parameters such as {kind}.
//
// Requests with another method on a registered path get 405.
func (r *ChiRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Method(method, path, r.Apply(handler))
}

// Handler registers a custom Handler for every method on each of its routes.
func (r *ChiRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *ChiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *ChiRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// URLParam returns the named chi URL parameter of req.
func URLParam(req *http.Request, name string) string {
	return chi.URLParam(req, name)
}
