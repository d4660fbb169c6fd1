package web

import (
	"net/http"

	"github.com/desertthunder/spins/internal/server"
)

// Register adds every dashboard route and the request logger to r.
func (h *Handlers) Register(r server.Router) {
	r.Use(server.RequestLogger(h.logger))

	r.Handle(http.MethodGet, "/", http.HandlerFunc(h.Dashboard))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(h.Health))

	r.Handle(http.MethodGet, "/api/history/stats", http.HandlerFunc(h.HistoryStats))
	r.Handle(http.MethodPost, "/api/history", server.MaxBody(MaxUploadBytes)(http.HandlerFunc(h.UploadHistory)))
	r.Handle(http.MethodDelete, "/api/history", http.HandlerFunc(h.ClearHistory))
	r.Handle(http.MethodGet, "/api/history/export", http.HandlerFunc(h.ExportHistory))

	r.Handle(http.MethodGet, "/api/spotify/overview", http.HandlerFunc(h.Overview))
	r.Handle(http.MethodGet, "/api/spotify/top/{kind}", http.HandlerFunc(h.Top))

	r.Handle(http.MethodPost, "/api/insights", http.HandlerFunc(h.CreateInsight))
	r.Handle(http.MethodGet, "/api/insights", http.HandlerFunc(h.ListInsights))
}

// Router builds a [server.ChiRouter] with every dashboard route registered.
func (h *Handlers) Router() *server.ChiRouter {
	r := server.NewRouter()
	h.Register(r)
	return r
}
