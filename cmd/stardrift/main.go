// Command stardrift draws a drifting starfield and a pointer trail in the terminal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/stardrift/config"
	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/parameter"
)

var (
	logger *zap.Logger

	configPath string
	logFile    string
	verbose    bool

	hostKind    string
	pointerFlag string
	watch       bool
	seed        uint64
	noTrail     bool
	noStars     bool
	showStatus  bool
)

var rootCmd = &cobra.Command{
	Use:   "stardrift",
	Short: "Ambient starfield and cursor trail for the terminal",
	Long: `stardrift renders two particle effects behind nothing in particular:
a field of slowly drifting stars and a short-lived trail that follows the mouse.

Move the mouse to draw the trail. Press q, Esc or Ctrl-C to quit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger(logFile, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the effects until quit",
	RunE:  runEffects,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	RunE:  printConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd.Flags().StringVar(&hostKind, "host", "tcell", "terminal host: tcell or tea")
	runCmd.Flags().StringVar(&pointerFlag, "pointer", "auto", "pointer motion: auto, on or off")
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	runCmd.Flags().BoolVar(&noTrail, "no-trail", false, "disable the cursor trail")
	runCmd.Flags().BoolVar(&noStars, "no-stars", false, "disable the starfield")
	runCmd.Flags().BoolVar(&showStatus, "status", false, "show the metrics line")

	rootCmd.AddCommand(runCmd, configCmd)
	rootCmd.RunE = runEffects
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLogger returns a no-op logger unless a file is given; stdout belongs to the UI
func buildLogger(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadConfig reads the config file if set and applies flag overrides
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}
	applyFlags(cmd, &cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if noTrail {
		cfg.Trail.Enabled = false
	}
	if noStars {
		cfg.Starfield.Enabled = false
	}
	if cmd.Flags().Changed("status") {
		cfg.Engine.ShowStatus = showStatus
	}
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runEffects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pointer, err := engine.ParsePointerMode(pointerFlag)
	if err != nil {
		return err
	}
	if watch && configPath == "" {
		return fmt.Errorf("--watch needs --config")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger, seed)
	a.override = func(c *config.Config) { applyFlags(cmd, c) }
	var reload func(context.Context) error
	if watch {
		w, err := config.NewWatcher(configPath, parameter.ConfigDebounce, logger)
		if err != nil {
			return err
		}
		reload = func(ctx context.Context) error {
			return w.Run(ctx, a.postReconfigure)
		}
	}

	switch hostKind {
	case "tcell":
		return a.runTcell(ctx, pointer, nil, reload)
	case "tea":
		return a.runTea(ctx, pointer, reload)
	default:
		return fmt.Errorf("unknown host %q (want tcell or tea)", hostKind)
	}
}
