package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/server"
	"github.com/joeblew999/drawmap/internal/service"
)

// Options defines all CLI flags and env vars for the drawmap server.
// Flags: --host, --port, --data-dir, --web-dir, --config, --delete-match, --journal,
// --session-idle, --log-level
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR, SERVICE_CONFIG,
// SERVICE_DELETE_MATCH, SERVICE_JOURNAL, SERVICE_SESSION_IDLE, SERVICE_LOG_LEVEL
type Options struct {
	Host        string `doc:"Host to bind to" default:"0.0.0.0"`
	Port        int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir     string `doc:"Directory for the draw journal" default:".data"`
	WebDir      string `doc:"Serve templates and static files from this directory instead of the embedded copy"`
	Config      string `doc:"Path to a YAML map config" short:"c"`
	DeleteMatch string `doc:"Marker delete predicate: legacy or exact" default:"legacy"`
	Journal     bool   `doc:"Record draw events in DuckDB" default:"true"`
	SessionIdle string `doc:"Unmount map sessions with no open event stream after this long" default:"2m"`
	LogLevel    string `doc:"Log level (debug, info, warn, error)" default:"info"`
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func newServer(opts *Options) (*server.Server, error) {
	mapCfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	match, err := service.ParseDeleteMatch(opts.DeleteMatch)
	if err != nil {
		return nil, err
	}
	idle, err := time.ParseDuration(opts.SessionIdle)
	if err != nil {
		return nil, fmt.Errorf("session idle: %w", err)
	}
	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		WebDir:      opts.WebDir,
		Map:         mapCfg,
		DeleteMatch: match,
		Journal:     opts.Journal,
		SessionIdle: idle,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		setupLogging(opts.LogLevel)

		var srv *server.Server

		hooks.OnStart(func() {
			var err error
			srv, err = newServer(opts)
			if err != nil {
				log.Fatal().Err(err).Msg("Server setup failed")
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			log.Info().
				Str("server", baseURL).
				Str("map", baseURL+"/map").
				Str("docs", baseURL+"/docs").
				Str("deleteMatch", opts.DeleteMatch).
				Bool("journal", opts.Journal).
				Msg("drawmap server starting")

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatal().Err(err).Msg("Server error")
			}
		})

		hooks.OnStop(func() {
			if srv != nil {
				srv.Close()
			}
		})
	})

	cli.Root().Use = "drawmap"
	cli.Root().Short = "Interactive map with an overlay and a marker draw toolbar"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.Journal = false
			srv, err := newServer(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
