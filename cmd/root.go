package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/ndview/internal/config"
	"github.com/HaiFongPan/ndview/internal/tui"
	"github.com/HaiFongPan/ndview/internal/tui/image"
	"github.com/HaiFongPan/ndview/internal/watcher"
)

var (
	cfgFile      string
	gridFile     string
	verbose      bool
	quiet        bool
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ndview",
	Short: "Browse N-dimensional image collections as a grid in the terminal",
	Long: `ndview shows a grid of images whose file names are built from a template
over named dimensions. One dimension is laid out across the grid, the others
are picked in a settings pane that only offers values leading to an image.

Example usage:
  ndview                          # Interactive grid for ./settings.cfg
  ndview -g plots.cfg             # Interactive grid for another grid file
  ndview check                    # Validate the grid file
  ndview resolve --set level=raw  # Print the file behind every grid value
  ndview show --set level=raw     # Render the grid images to the terminal`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runViewer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.ndview/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&gridFile, "grid", "g", "", "grid configuration file (overrides grid.file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if gridFile != "" {
		globalConfig.Grid.File = gridFile
	}

	setupLogging()

	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	logFile := globalConfig.Log.File
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		logrus.Warnf("Failed to create log directory for %s: %v", logFile, err)
	} else {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// runViewer opens the grid and runs the interactive viewer
func runViewer(cmd *cobra.Command, args []string) error {
	session, err := openGrid(GetConfig())
	if err != nil {
		return err
	}

	initial, ok := session.viewer.InitialSelection()
	if !ok {
		return fmt.Errorf("no combination of values in %s resolves to an existing image under %q",
			session.file, session.viewer.Base())
	}

	logrus.WithFields(logrus.Fields{
		"grid":    session.file,
		"initial": []string(initial),
		"remote":  !session.local,
	}).Info("starting viewer")

	// Panes always draw with half-blocks; graphics protocols are used by show
	images := image.NewManager(session.viewer, image.NewRenderer("text"))
	model := tui.NewGridModel(session.viewer, images, initial)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg := GetConfig()
	if session.local && cfg.UI.Watch {
		dir := session.viewer.Base()
		if dir == "" {
			dir = "."
		}
		delay := time.Duration(cfg.UI.WatchDebounceMS) * time.Millisecond
		w, err := watcher.New(dir, delay)
		if err != nil {
			logrus.WithError(err).Warn("image directory watch disabled")
		} else {
			defer w.Close()
			w.Start(ctx)
			model.SetWatcher(w)
		}
	}

	program := tea.NewProgram(model)
	_, err = program.Run()

	stats := images.GetStats()
	logrus.WithFields(logrus.Fields{
		"previews": stats.TotalPreviews,
		"hit_rate": fmt.Sprintf("%.1f%%", stats.CacheHitRate),
		"renderer": stats.RendererType,
		"exit_err": err,
	}).Info("viewer closed")

	return err
}
