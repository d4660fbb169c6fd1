package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/desertthunder/spins/internal/formatter"
	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/server"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
)

const (
	defaultTopLimit     = 20
	defaultInsightLimit = 20
)

type dashboardData struct {
	Summary  *models.StatisticsSummary
	Insights []models.InsightView
	Error    string
}

// Dashboard renders the HTML overview of the stored history and recent insights.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{Insights: []models.InsightView{}}

	if h.history != nil {
		summary, err := h.history.Load(0)
		if err != nil {
			data.Error = err.Error()
		}
		data.Summary = summary
	}

	if h.insights != nil {
		insights, err := h.insights.List("", 5)
		if err != nil {
			h.logger.Warn("failed to list insights", "error", err)
		}
		for _, in := range insights {
			data.Insights = append(data.Insights, in.View())
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HistoryStats returns statistics for the stored history; ?year= overrides the current year.
func (h *Handlers) HistoryStats(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable))
		return
	}

	year, err := intParam(r, "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}

	summary, err := h.history.Load(year)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if summary == nil {
		h.writeError(w, shared.ErrNoHistory)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// UploadHistory replaces the stored history with the uploaded files and returns fresh statistics.
func (h *Handlers) UploadHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.writeError(w, err)
			return
		}
		h.writeError(w, fmt.Errorf("%w: expected a multipart form: %v", shared.ErrInvalidArgument, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	sources := make([]tasks.Source, 0, len(files))
	for _, fh := range files {
		sources = append(sources, tasks.MultipartSource(fh))
	}

	summary, err := h.history.Upload(r.Context(), sources, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("history uploaded", "files", len(sources), "plays", summary.TotalTracks)
	h.writeJSON(w, http.StatusOK, summary)
}

// ClearHistory deletes the stored history.
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable))
		return
	}
	if err := h.history.Clear(); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportHistory returns the stored play events as JSON or CSV.
func (h *Handlers) ExportHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, fmt.Errorf("%w: history storage not initialized", shared.ErrServiceUnavailable))
		return
	}

	format := formatter.JSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := formatter.ParseFormat(v)
		if err != nil {
			h.writeError(w, err)
			return
		}
		format = f
	}

	events, err := h.history.Events()
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := formatter.History(events, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	contentType := "application/json"
	if format == formatter.CSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="listening_history%s"`, format.Extension()))
	w.Write(data)
}

// Overview returns the recent listening overview for ?range=.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	if h.overview == nil {
		h.writeError(w, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable))
		return
	}

	tr, err := rangeParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	overview, err := h.overview.Overview(r.Context(), tr, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// Top returns the user's top tracks or artists; {kind} is "tracks" or "artists".
func (h *Handlers) Top(w http.ResponseWriter, r *http.Request) {
	if h.overview == nil {
		h.writeError(w, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable))
		return
	}

	tr, err := rangeParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	limit, err := intParam(r, "limit", defaultTopLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch kind := server.URLParam(r, "kind"); kind {
	case "tracks":
		tracks, err := h.overview.TopTracks(r.Context(), tr, limit)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, tracks)
	case "artists":
		artists, err := h.overview.TopArtists(r.Context(), tr, limit)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, artists)
	default:
		h.writeError(w, fmt.Errorf("%w: unknown kind %q (want tracks or artists)", shared.ErrInvalidArgument, kind))
	}
}

type insightRequest struct {
	Source  models.InsightSource `json:"source"`
	History string               `json:"history,omitempty"`
}

// CreateInsight generates an insight from Spotify, the stored history, or a free-text playlist history.
func (h *Handlers) CreateInsight(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		h.writeError(w, fmt.Errorf("%w: insights not configured", shared.ErrServiceUnavailable))
		return
	}

	var body insightRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid request body: %v", shared.ErrInvalidArgument, err))
		return
	}

	var (
		insight *models.Insight
		err     error
	)
	if body.Source == models.SourcePlaylist {
		insight, err = h.insights.DescribePlaylist(r.Context(), body.History, nil)
	} else {
		insight, err = h.insights.Generate(r.Context(), body.Source, nil)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, insight.View())
}

// ListInsights returns archived insights newest first.
func (h *Handlers) ListInsights(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		h.writeJSON(w, http.StatusOK, []models.InsightView{})
		return
	}

	limit, err := intParam(r, "limit", defaultInsightLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	insights, err := h.insights.List(models.InsightSource(r.URL.Query().Get("source")), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]models.InsightView, 0, len(insights))
	for _, in := range insights {
		views = append(views, in.View())
	}
	h.writeJSON(w, http.StatusOK, views)
}

func rangeParam(r *http.Request) (models.TimeRange, error) {
	tr, err := models.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return tr, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", shared.ErrInvalidArgument, name)
	}
	return n, nil
}
