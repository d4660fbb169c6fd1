// Package web serves the listening dashboard: a JSON API over the history, overview and insight
// engines plus a single server-rendered HTML page.
//
// Routes
//
//	GET    /                          → HTML dashboard
//	GET    /healthz                   → liveness probe
//	GET    /api/history/stats?year=   → StatisticsSummary of the stored history
//	POST   /api/history               → multipart upload (field "files"), replaces the history
//	DELETE /api/history               → clears the stored history
//	GET    /api/history/export        → stored play events (?format=json|csv)
//	GET    /api/spotify/overview      → recent overview (?range=short|medium|long)
//	GET    /api/spotify/top/{kind}    → top tracks or artists (?range=&limit=)
//	POST   /api/insights              → {"source":"spotify"|"history"} generates an insight
//	GET    /api/insights              → archived insights (?source=&limit=)
//
// Errors are written as {"error": "..."} with a status derived from the sentinel in the chain.
package web

import (
	"embed"
	"html/template"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
)

// MaxUploadBytes bounds a single upload request.
const MaxUploadBytes = 64 << 20

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"minutes": shared.FormatMinutes,
	"count":   shared.FormatCount,
	"inc":     func(i int) int { return i + 1 },
}

// Handlers serves the dashboard. Any engine may be nil; its routes then answer 503.
type Handlers struct {
	history  *tasks.HistoryEngine
	overview *tasks.OverviewEngine
	insights *tasks.InsightEngine
	logger   *log.Logger
	pages    *template.Template
}

// New creates dashboard handlers over the given engines.
func New(history *tasks.HistoryEngine, overview *tasks.OverviewEngine, insights *tasks.InsightEngine, logger *log.Logger) (*Handlers, error) {
	pages, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handlers{
		history:  history,
		overview: overview,
		insights: insights,
		logger:   logger,
		pages:    pages,
	}, nil
}
