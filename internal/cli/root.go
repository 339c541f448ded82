// Package cli implements the coremap command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"coremap/internal/catalog"
	"coremap/internal/catalog/sqlite"
	"coremap/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.3.0"

// options are the persistent flags shared by every command
type options struct {
	configPath  string
	catalogPath string
	debug       bool
}

// app is the state a command runs with, built from flags and config
type app struct {
	cfg     *config.Config
	cfgPath string
	logger  *zap.Logger
	static  fs.FS
}

// Execute runs the command line. static holds the browser viewer.
func Execute(static fs.FS) error {
	return newRootCmd(static).Execute()
}

func newRootCmd(static fs.FS) *cobra.Command {
	opts := &options{}
	a := &app{static: static}

	root := &cobra.Command{
		Use:   "coremap",
		Short: "Interactive force-directed system map",
		Long: Brand.Sprint("coremap") + ": lay out a system catalog with a force simulation and explore it in the browser\n" +
			Subtle.Sprint("Hover to highlight neighbors, drag to pin, click to open a module"),
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetVersionTemplate("coremap {{ .Version }}\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: search "+config.ConfigFileName+", XDG, /etc)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "Catalog file (.yaml, .json, .toml, .db); overrides the config")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Development logging at debug level")

	root.AddCommand(
		serveCmd(a),
		settleCmd(a),
		renderCmd(a),
		validateCmd(a),
		routesCmd(a),
		exportCmd(a),
		configCmd(a),
	)
	return root
}

func (a *app) init(opts *options) error {
	var err error
	if opts.configPath != "" {
		a.cfg, a.cfgPath, err = config.LoadFromPath(opts.configPath)
	} else {
		a.cfg, a.cfgPath, err = config.Load()
	}
	if err != nil {
		return err
	}
	if opts.catalogPath != "" {
		a.cfg.Catalog.Path = opts.catalogPath
	}
	if opts.debug {
		a.cfg.Log.Development = true
		a.cfg.Log.Level = "debug"
	}

	a.logger, err = buildLogger(a.cfg.Log)
	return err
}

func buildLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// openSource picks the catalog source for path. The closer is never nil.
func openSource(path string) (catalog.Source, io.Closer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return catalog.DefaultSource{}, io.NopCloser(nil), nil
		}
	case ".db", ".sqlite", ".sqlite3":
		src, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	}
	return catalog.FileSource{Path: path}, io.NopCloser(nil), nil
}

// loadCatalog reads the configured catalog
func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, string, error) {
	src, closer, err := openSource(a.cfg.Catalog.Path)
	if err != nil {
		return nil, "", err
	}
	defer closer.Close()

	cat, err := src.Load(ctx)
	if err != nil {
		return nil, src.Name(), err
	}
	return cat, src.Name(), nil
}
