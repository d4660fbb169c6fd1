package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spins/internal/repositories"
	"github.com/desertthunder/spins/internal/services"
	"github.com/desertthunder/spins/internal/shared"
	"github.com/desertthunder/spins/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Service
	summarizer services.Summarizer
	db         *sql.DB
	history    *tasks.HistoryEngine
	overview   *tasks.OverviewEngine
	insights   *tasks.InsightEngine
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Service
	Summarizer services.Summarizer
	DB         *sql.DB
	Blobs      repositories.BlobStore // history storage; defaults to the kv_store table of DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a database or blob store the history commands report [shared.ErrServiceUnavailable];
// without a Spotify service the overview engine is not created.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Blobs == nil && opts.DB != nil {
		opts.Blobs = repositories.NewKVRepository(opts.DB)
	}

	loc, err := opts.Config.History.Location()
	if err != nil {
		opts.Logger.Warn("falling back to local time zone", "error", err)
		loc = nil
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		summarizer: opts.Summarizer,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.Blobs != nil {
		r.history = tasks.NewHistoryEngine(repositories.NewHistoryStore(opts.Blobs), tasks.HistoryOpts{
			Workers:  opts.Config.History.Workers,
			Location: loc,
			Limit:    opts.Config.History.TopLimit,
		})
	}
	if opts.Spotify != nil {
		r.overview = tasks.NewOverviewEngine(opts.Spotify, loc)
	}

	var archive tasks.InsightArchive
	if opts.DB != nil {
		archive = repositories.NewInsightRepository(opts.DB)
	}
	r.insights = tasks.NewInsightEngine(opts.Summarizer, opts.Spotify, r.history, archive)

	return r
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, spotifyCommand, historyCommand, insightCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// saveTokens stores a newly issued Spotify token in the config and writes it to disk when a path is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	r.logger.Debug("spotify tokens saved", "path", r.configPath)
	return nil
}

func (r *Runner) requireHistory() error {
	if r.history == nil {
		return fmt.Errorf("%w: history storage not initialized, run 'spins setup database'", shared.ErrServiceUnavailable)
	}
	return nil
}

// printProgress prints updates until the returned channel is closed. The returned func closes
// the channel and waits for the printer to drain it.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ReadFiles, tasks.FetchProfile, tasks.FetchTopTracks, tasks.FetchTopArtists, tasks.FetchRecent:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.StoreHistory, tasks.ArchiveInsight:
				r.writePlain("💾 %s\n", update.Message)
			case tasks.ComputeStats:
				r.writePlain("📊 %s\n", update.Message)
			case tasks.GenerateInsight:
				r.writePlain("✨ %s\n", update.Message)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
