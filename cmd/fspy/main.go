// Command fspy inspects fSpy camera calibration projects, exports their
// reference photos and keeps a catalog of imported projects.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	fspy "github.com/menta2k/fspy-importer"
	"github.com/menta2k/fspy-importer/internal/config"
	"github.com/menta2k/fspy-importer/pkg/analyzer"
)

// exitError carries a non-zero exit code out of a command
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *exitError) Unwrap() error {
	return e.Err
}

// app is the state shared by all commands
type app struct {
	cfgFile string
	verbose bool

	cfg      *config.Config
	logger   *log.Logger
	analyzer *analyzer.ImageAnalyzer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+exitErr.Err.Error())
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{analyzer: analyzer.New()}

	root := &cobra.Command{
		Use:   "fspy",
		Short: "Read fSpy camera calibration projects",
		Long: titleStyle.Render("fspy") + ` - read fSpy camera calibration projects

Decodes .fspy project files, rebuilds the calibrated camera and exports
the reference photo as a wallpaper sized to the camera view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is "+config.GetConfigPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInspectCmd(a),
		newWallpaperCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newForgetCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = log.NewWithOptions(stderr, log.Options{Prefix: "fspy"})
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("loaded configuration", "sensor", fmt.Sprintf("%gx%g", cfg.Sensor.Width, cfg.Sensor.Height), "catalog", cfg.Catalog.Path)
	return nil
}

// importerConfig maps the application configuration onto the importer
func (a *app) importerConfig() fspy.ImporterConfig {
	return fspy.ImporterConfig{
		Sensor:      a.cfg.Sensor,
		MaxViewSize: a.cfg.Viewport.MaxSize,
		OutputDir:   a.cfg.Wallpaper.OutputDir,
		Format:      a.cfg.Wallpaper.Format,
		Quality:     a.cfg.Wallpaper.Quality,
		Lossless:    a.cfg.Wallpaper.Lossless,
		Raw:         a.cfg.Wallpaper.Raw,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "fspy %s\n", fspy.Version)
			return nil
		},
	}
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
