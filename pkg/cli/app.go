package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mchmarny/rfm/pkg/config"
	"github.com/mchmarny/rfm/pkg/data"
	"github.com/mchmarny/rfm/pkg/logging"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "rfm"
	appConfigKey = "app-config"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	logLevel = new(slog.LevelVar)

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFlag = &urfave.StringFlag{
		Name:    "db",
		Usage:   "Path to the Sqlite database file, or a mysql:// or postgres:// DSN",
		EnvVars: []string{"RFM_DB"},
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: config.FormatJSON,
	}

	configDirFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: fmt.Sprintf("Directory holding config.yaml (default: $HOME/.%s)", appName),
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(false)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Config *config.Config
	Format string
	Store  *data.Store
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Customer RFM segmentation and purchase-propensity features from sales data",
		Metadata:             map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			dbFlag,
			formatFlag,
			configDirFlag,
		},
		Commands: []*urfave.Command{
			scoreCmd,
			reportCmd,
			featuresCmd,
			resellersCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				initLogging(true)
			}

			dir := c.String(configDirFlag.Name)
			if dir == "" {
				home, _, err := config.GetOrCreateHomeDir(appName)
				if err != nil {
					return fmt.Errorf("resolving home dir: %w", err)
				}
				dir = home
			}

			cfg, err := config.ReadOrCreate(dir)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			format := cfg.Format
			if c.IsSet(formatFlag.Name) {
				format = c.String(formatFlag.Name)
			}
			if format == "yml" {
				format = config.FormatYAML
			}
			if format != config.FormatJSON && format != config.FormatYAML {
				return fmt.Errorf("unsupported format: %s", format)
			}

			dsn := c.String(dbFlag.Name)
			if dsn == "" {
				dsn = cfg.DB
			}
			if dsn == "" {
				dsn = filepath.Join(dir, data.DataFileName)
			}

			store, err := data.Open(dsn)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			slog.Debug("store ready", "driver", store.Driver())

			c.App.Metadata[appConfigKey] = &appConfig{
				Config: cfg,
				Format: format,
				Store:  store,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.Store != nil {
				cfg.Store.Close()
			}
			return nil
		},
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logLevel.Set(level)
	slog.SetDefault(slog.New(logging.NewTerminalHandler(os.Stderr, logLevel)))
}

func encode(w io.Writer, format string, v any) error {
	if format == config.FormatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
