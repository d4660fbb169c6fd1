// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func rangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short_term (4 weeks), medium_term (6 months) or long_term (years)",
		Value:   "medium_term",
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// spotifyCommand handles live Spotify listening data.
func spotifyCommand(r *Runner) *cli.Command {
	topFlags := func() []cli.Flag {
		return append([]cli.Flag{
			configFlag(),
			rangeFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of items to return (1-50)",
				Value:   20,
			},
		}, jsonFlags()...)
	}

	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify listening data",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:   "profile",
				Usage:  "Show the connected Spotify account",
				Flags:  append([]cli.Flag{configFlag()}, jsonFlags()...),
				Action: r.SpotifyProfile,
			},
			{
				Name:  "top",
				Usage: "Show top tracks or artists",
				Commands: []*cli.Command{
					{
						Name:   "tracks",
						Usage:  "Show top tracks",
						Flags:  topFlags(),
						Action: r.SpotifyTopTracks,
					},
					{
						Name:   "artists",
						Usage:  "Show top artists",
						Flags:  topFlags(),
						Action: r.SpotifyTopArtists,
					},
				},
			},
			{
				Name:  "recent",
				Usage: "Show recently played tracks",
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of plays to return (1-50)",
						Value:   20,
					},
				}, jsonFlags()...),
				Action: r.SpotifyRecent,
			},
			{
				Name:   "overview",
				Usage:  "Summarize recent listening: minutes, top artist, genre and daily/hourly activity",
				Flags:  append([]cli.Flag{configFlag(), rangeFlag()}, jsonFlags()...),
				Action: r.SpotifyOverview,
			},
		},
	}
}

// historyCommand handles uploaded listening history files.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Import and analyze exported Spotify listening history",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Replace the stored history with the given StreamingHistory*.json files",
				ArgsUsage: "<files...>",
				Action:    r.HistoryImport,
			},
			{
				Name:  "stats",
				Usage: "Show statistics for the stored history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
					&cli.IntFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Year used for the this-year total (default: current year)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.HistoryStats,
			},
			{
				Name:  "export",
				Usage: "Export the stored plays",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json or csv",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: spins_history.<ext>)",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:   "clear",
				Usage:  "Delete the stored history",
				Action: r.HistoryClear,
			},
		},
	}
}

// insightCommand handles generated listening summaries.
func insightCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "insight",
		Aliases: []string{"insights"},
		Usage:   "Generate and browse written summaries of your listening",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Summarize your Spotify top tracks and artists",
				Flags:  append([]cli.Flag{configFlag()}, jsonFlags()...),
				Action: r.InsightSpotify,
			},
			{
				Name:   "history",
				Usage:  "Summarize the stored listening history",
				Flags:  append([]cli.Flag{configFlag()}, jsonFlags()...),
				Action: r.InsightHistory,
			},
			{
				Name:      "playlist",
				Usage:     "Write a playlist description from a listening history",
				ArgsUsage: "[text...]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read the listening history from a file",
					},
				}, jsonFlags()...),
				Action: r.InsightPlaylist,
			},
			{
				Name:  "list",
				Usage: "List archived insights, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Only show insights from spotify, history or playlist",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of insights",
						Value:   10,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv or json",
						Value:   "text",
					},
				},
				Action: r.InsightList,
			},
		},
	}
}

// serveCommand starts the HTTP dashboard.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web dashboard and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing statistics.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch the interactive stats browser, importing any given files first",
		ArgsUsage: "[files...]",
		Action:    r.TUI,
	}
}
