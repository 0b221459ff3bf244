package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/historystate/internal/cliconfig"
	"github.com/bft-labs/historystate/internal/simulate"
	"github.com/bft-labs/historystate/pkg/historystate"
	"github.com/bft-labs/historystate/plugins/backupwatcher"
	"github.com/bft-labs/historystate/plugins/metrics"
)

const longHelp = `Inspect and replay the navigation history kept by historystate.

historystate tracks a page index for every history entry, stores a route
and a data snapshot per page, and writes the whole stack to session storage
on unload so it survives reloads.

Commands:
  inspect   print the reload backup of a session (or of every session)
  simulate  replay a TOML navigation scenario against a simulated browser

Configure via $HOME/.historystate/config.toml, HISTORYSTATE_* env, or flags.`

var exampleUsage = strings.TrimSpace(`
  historystate inspect --storage-dir ./sessions tab-1
  historystate inspect --watch tab-1
  historystate simulate --reloadable scenario.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return historystate.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "historystate",
		Short:         "Inspect and replay page history stacks",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			log = cliconfig.LevelLogger(cfg.LogLevel)
			log.Debug().Interface("config", cfg).Msg("configuration")
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.historystate/config.toml)")
	pf.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "directory holding session storage files")
	pf.StringVar(&cfg.Session, "session", cfg.Session, "session name")
	pf.StringVar(&cfg.StorageKey, "storage-key", cfg.StorageKey, "session storage key of the reload backup")
	pf.StringVar(&cfg.QueryKey, "query-key", cfg.QueryKey, "query parameter carrying the page index in reloadable mode")
	pf.StringVar(&cfg.StateKey, "state-key", cfg.StateKey, "history entry state key carrying the page index")
	pf.BoolVar(&cfg.Reloadable, "reloadable", cfg.Reloadable, "keep the stack across reloads")
	pf.DurationVar(&cfg.DebounceDelay, "debounce", cfg.DebounceDelay, "delay before reading a changed backup (inspect --watch)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newInspectCmd(&cfg, func() zerolog.Logger { return log }),
		newSimulateCmd(&cfg, func() zerolog.Logger { return log }),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("historystate")
		os.Exit(1)
	}
}

// loadConfig merges the config file and HISTORYSTATE_* env into cfg. Flags
// set on the command line win over both, env wins over the file.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func newInspectCmd(cfg *cliconfig.Config, logger func() zerolog.Logger) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "inspect [session]",
		Short: "Print the reload backup of a session without consuming it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := cfg.Session
			if len(args) == 1 {
				session = args[0]
			}
			if cfg.StorageDir == "" {
				return fmt.Errorf("storage-dir is required")
			}
			out := cmd.OutOrStdout()

			if session == "" {
				if watch {
					return fmt.Errorf("--watch needs a session")
				}
				return inspectAll(cmd.Context(), out, cfg)
			}

			if err := inspectSession(cmd.Context(), out, cfg, session); err != nil && !watch {
				return err
			}
			if !watch {
				return nil
			}
			return watchSession(out, cfg, session, logger())
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep printing the backup whenever it changes")
	return cmd
}

func inspectAll(ctx context.Context, out io.Writer, cfg *cliconfig.Config) error {
	matches, err := filepath.Glob(filepath.Join(cfg.StorageDir, "*.json"))
	if err != nil {
		return err
	}
	sessions := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := historystate.SessionOf(m); s != "" {
			sessions = append(sessions, s)
		}
	}
	sort.Strings(sessions)

	if len(sessions) == 0 {
		fmt.Fprintf(out, "no sessions in %s\n", cfg.StorageDir)
		return nil
	}
	for _, s := range sessions {
		if err := inspectSession(ctx, out, cfg, s); err != nil {
			fmt.Fprintf(out, "%s: %v\n", s, err)
		}
	}
	return nil
}

func inspectSession(ctx context.Context, out io.Writer, cfg *cliconfig.Config, session string) error {
	storage := historystate.NewFileStorage(cfg.StorageDir, session)
	stack, err := historystate.PeekBackup(ctx, storage, cfg.StorageKey)
	if err != nil {
		return fmt.Errorf("session %s: %w", session, err)
	}
	if stack == nil {
		fmt.Fprintf(out, "%s: no backup\n", session)
		return nil
	}
	printStack(out, session, stack)
	return nil
}

func printStack(out io.Writer, session string, stack *historystate.Stack) {
	fmt.Fprintf(out, "%s: page %d of %d\n", session, stack.Page, stack.Len())
	for i := 0; i < stack.Len(); i++ {
		marker := " "
		if i == stack.Page {
			marker = "*"
		}
		name, path := "-", ""
		if r := stack.Routes[i]; r != nil {
			name, path = r.Name, r.FullPath
		}
		line := fmt.Sprintf("  %s %2d %-12s %s", marker, i, name, path)
		if d := stack.Datas[i]; d != nil {
			line += fmt.Sprintf(" data=%v", map[string]any(d))
		}
		fmt.Fprintln(out, line)
	}
}

func watchSession(out io.Writer, cfg *cliconfig.Config, session string, log zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wcfg := backupwatcher.DefaultConfig(cfg.StorageDir)
	wcfg.Session = session
	wcfg.StorageKey = cfg.StorageKey
	wcfg.DebounceDelay = cfg.DebounceDelay
	wcfg.Logger = historystate.NewZerologLoggerWith(log)

	stop, err := backupwatcher.WatchWithConfig(ctx, wcfg, func(s string, stack *historystate.Stack, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", s, err)
			return
		}
		printStack(out, s, stack)
	})
	if err != nil {
		return err
	}
	defer stop()

	log.Info().Str("session", session).Msg("watching backup, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func newSimulateCmd(cfg *cliconfig.Config, logger func() zerolog.Logger) *cobra.Command {
	var inMemory, showMetrics bool

	cmd := &cobra.Command{
		Use:   "simulate <scenario.toml>",
		Short: "Replay a navigation scenario and print the state after each step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := simulate.LoadScenario(args[0])
			if err != nil {
				return err
			}

			log := logger()
			opts := simulate.Options{
				Config: cfg.Library(),
				Logger: historystate.NewZerologLoggerWith(log),
			}

			if !inMemory && cfg.StorageDir != "" {
				session := cfg.Session
				if session == "" {
					session = uuid.NewString()
				}
				opts.Storage = historystate.NewFileStorage(cfg.StorageDir, session)
				log.Info().
					Str("session", session).
					Str("file", historystate.SessionFile(cfg.StorageDir, session)).
					Msg("using file session storage")
			}

			reg := prometheus.NewRegistry()
			if showMetrics {
				opts.Handlers = append(opts.Handlers, metrics.New(reg))
			}

			out := cmd.OutOrStdout()
			if err := simulate.RunTo(cmd.Context(), out, sc, opts); err != nil {
				return err
			}

			if showMetrics {
				return writeMetrics(out, reg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "keep session storage in memory instead of storage-dir")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print Prometheus metrics after the run")
	return cmd
}

func writeMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}
