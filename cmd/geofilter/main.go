package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/geo-filter/internal/config"
	"github.com/joeblew999/geo-filter/internal/geo"
	"github.com/joeblew999/geo-filter/internal/logging"
	"github.com/joeblew999/geo-filter/internal/server"
)

// Options defines all CLI flags and env vars for geofilter.
// Flags: --host, --port, --config, --data-dir, --web-dir, --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CONFIG, SERVICE_DATA_DIR, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8086"`
	Config    string `doc:"Path to YAML configuration file" short:"c"`
	DataDir   string `doc:"Directory for the DuckDB file; empty keeps it in memory"`
	WebDir    string `doc:"Path to web/ directory with the viewer page"`
	LogLevel  string `doc:"Log level: trace, debug, info, warn, error" default:"info"`
	LogFormat string `doc:"Log format: console or json" default:"console"`
}

func setup(opts *Options) *config.Config {
	logging.Setup(opts.LogLevel, opts.LogFormat, os.Stderr)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Config).Msg("Failed to load configuration")
	}
	return cfg
}

func newServer(opts *Options, cfg *config.Config) *server.Server {
	return server.New(server.Config{
		Host:     opts.Host,
		Port:     fmt.Sprintf("%d", opts.Port),
		DataDir:  opts.DataDir,
		WebDir:   opts.WebDir,
		Settings: cfg,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		cfg := setup(opts)
		srv := newServer(opts, cfg)
		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler: srv,
		}

		hooks.OnStart(func() {
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			log.Info().
				Str("addr", httpServer.Addr).
				Str("docs", baseURL+"/docs").
				Str("openapi", baseURL+"/openapi.json").
				Int64("max_upload_bytes", cfg.MaxUploadBytes()).
				Msg("geofilter API server starting")

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server error")
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("Shutdown failed")
			}
			srv.Close()
		})
	})

	cli.Root().Use = "geofilter"
	cli.Root().Short = "Filter GeoJSON features by attribute and frame them on a map"
	cli.Root().Version = "0.1.0"

	cli.Root().AddCommand(specCommand(), filterCommand(), sceneCommand())
	cli.Run()
}

func specCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg := setup(opts)
			srv := newServer(opts, cfg)
			defer srv.Close()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(srv.OpenAPI())
			} else {
				output, err = json.MarshalIndent(srv.OpenAPI(), "", "  ")
			}
			if err != nil {
				log.Fatal().Err(err).Msg("Error marshaling spec")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(output))
		}),
	}
	cmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	return cmd
}

func filterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter FILE",
		Short: "Write the features of FILE whose attribute matches a pattern",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			setup(opts)
			fc, spec := loadForCommand(cmd, args[0])

			doc, n, err := geo.ExportFiltered(fc, spec)
			if err != nil {
				log.Fatal().Err(err).Msg("Filter failed")
			}

			output, _ := cmd.Flags().GetString("output")
			if err := writeOutput(cmd.OutOrStdout(), output, doc); err != nil {
				log.Fatal().Err(err).Str("output", output).Msg("Write failed")
			}
			log.Info().
				Str("attribute", spec.Attribute).
				Str("pattern", spec.Pattern).
				Int("matched", n).
				Int("total", fc.Len()).
				Msg("Filtered features")
		}),
	}
	filterFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func sceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene FILE",
		Short: "Print the map scene (center, zoom, styled features) for a selection",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg := setup(opts)
			fc, spec := loadForCommand(cmd, args[0])
			focus, _ := cmd.Flags().GetStringArray("focus")

			scene, err := geo.BuildScene(fc, geo.SceneRequest{
				Filter:         spec,
				Focus:          focus,
				FocusAttribute: cfg.FocusAttribute,
				Palette:        cfg.Palette,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Scene failed")
			}

			out, err := json.MarshalIndent(scene, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("Error marshaling scene")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}),
	}
	filterFlags(cmd)
	cmd.Flags().StringArray("focus", nil, "Feature name to emphasize (repeatable)")
	return cmd
}

func filterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("attribute", "a", "", "Property to match (default: the name column, else the first)")
	cmd.Flags().StringP("pattern", "r", "", "Case-insensitive regular expression")
}

// loadForCommand reads FILE and resolves the filter flags against it.
func loadForCommand(cmd *cobra.Command, path string) (*geo.FeatureCollection, geo.FilterSpec) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot open input")
	}
	defer f.Close()

	fc, err := geo.ReadCollection(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Cannot load GeoJSON")
	}

	attribute, _ := cmd.Flags().GetString("attribute")
	pattern, _ := cmd.Flags().GetString("pattern")
	if attribute == "" {
		table, err := geo.BuildTable(fc.Features)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Cannot build attribute table")
		}
		attribute = table.Columns[table.DefaultFilterColumn()]
	}
	return fc, geo.FilterSpec{Attribute: attribute, Pattern: pattern}
}

func writeOutput(stdout io.Writer, path string, doc []byte) error {
	if path == "" {
		_, err := stdout.Write(append(doc, '\n'))
		return err
	}
	return os.WriteFile(path, append(doc, '\n'), 0644)
}
