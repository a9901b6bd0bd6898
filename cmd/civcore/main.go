// Civcore loads a ruleset and scenario and exposes the rules core through
// a console, a terminal inspector and a few one-shot reports.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nathoo/civcore/cli"
	"github.com/nathoo/civcore/config"
	"github.com/nathoo/civcore/engine"
	"github.com/nathoo/civcore/engine/resolve"
	"github.com/nathoo/civcore/loader"
	"github.com/nathoo/civcore/tui"
	"github.com/nathoo/civcore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	logLevel     string
	settingsFile string
	seed         uint64
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "civcore",
		Short: "Rules core for a turn-based civilization game",
		Long: `Civcore loads a Lua ruleset and scenario, sanity-checks it, and
answers research, action and effect queries against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("bad --log-level: %w", err)
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "", "Path to a YAML server settings file")
	root.PersistentFlags().Uint64Var(&seed, "seed", 0, "RNG seed (overrides the settings file)")

	root.AddCommand(
		newCheckCmd(),
		newResearchCmd(),
		newActionsCmd(),
		newPlayCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)
	return root
}

func loadSettings() (*config.Settings, error) {
	if settingsFile == "" {
		return nil, nil
	}
	return config.Load(settingsFile)
}

// loadSession loads the ruleset in dir and starts a session over it.
func loadSession(cmd *cobra.Command, dir string) (*engine.Session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{engine.WithLogger(log.Logger)}
	var ls loader.Settings
	if settings != nil {
		ls = settings
		opts = append(opts, engine.WithSettings(settings))
		if settings.Seed != nil {
			opts = append(opts, engine.WithSeed(*settings.Seed))
		}
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, engine.WithSeed(seed))
	}

	defs, world, err := loader.Load(dir, ls)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	return engine.New(defs, world, opts...)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <ruleset-dir>",
		Short: "Load a ruleset and report every sanity problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			var ls loader.Settings
			if settings != nil {
				ls = settings
			}

			defs, _, err := loader.Load(args[0], ls)
			var ve *loader.ValidationError
			if errors.As(err, &ve) {
				printProblems(out, ve)
				return fmt.Errorf("%s: %d error(s)", args[0], len(ve.Errors))
			}
			if err != nil {
				return err
			}
			printProblems(out, loader.Check(defs, ls))
			color.New(color.FgGreen, color.Bold).Fprintf(out, "%s: ruleset %q is sane\n", args[0], defs.Game.Name)
			return nil
		},
	}
}

func printProblems(w io.Writer, ve *loader.ValidationError) {
	errColor := color.New(color.FgRed)
	warnColor := color.New(color.FgYellow)
	for _, e := range ve.Errors {
		errColor.Fprintln(w, "error:  ", e)
	}
	for _, e := range ve.Warnings {
		warnColor.Fprintln(w, "warning:", e)
	}
}

func newResearchCmd() *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "research <ruleset-dir>",
		Short: "Print the tech table of one or every player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			players := s.World.Players
			if player != "" {
				p, err := resolve.Player(s.World, player)
				if err != nil {
					return err
				}
				players = []*types.Player{p}
			}
			title := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()
			for _, p := range players {
				if p == nil {
					continue
				}
				title.Fprintln(out, s.ResearchSummary(p))
				if err := cli.RenderResearch(out, s.ResearchRows(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&player, "player", "p", "", "Only this player")
	return cmd
}

func newActionsCmd() *cobra.Command {
	var unit, city, target string
	cmd := &cobra.Command{
		Use:   "actions <ruleset-dir> --unit <unit> (--city <city> | --target-unit <unit>)",
		Short: "Print which actions a unit can attempt and their odds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (city == "") == (target == "") {
				return fmt.Errorf("give exactly one of --city and --target-unit")
			}
			s, err := loadSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			actor, err := resolve.Unit(s.Defs, s.World, unit)
			if err != nil {
				return err
			}
			var rows []engine.ActionRow
			if city != "" {
				c, err := resolve.City(s.World, city)
				if err != nil {
					return err
				}
				rows = s.ActionRows(actor, c, nil)
			} else {
				u, err := resolve.Unit(s.Defs, s.World, target)
				if err != nil {
					return err
				}
				rows = s.ActionRows(actor, nil, u)
			}
			return cli.RenderActions(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Acting unit")
	cmd.Flags().StringVarP(&city, "city", "c", "", "Target city")
	cmd.Flags().StringVarP(&target, "target-unit", "t", "", "Target unit")
	_ = cmd.MarkFlagRequired("unit")
	return cmd
}

func newPlayCmd() *cobra.Command {
	var scriptFile string
	var plain, trace bool
	cmd := &cobra.Command{
		Use:   "play <ruleset-dir>",
		Short: "Run the interactive console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			// Script mode: read commands from a file and echo them.
			if scriptFile != "" {
				f, err := os.Open(scriptFile)
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				c := cli.New(s)
				c.In = f
				c.Out = cmd.OutOrStdout()
				c.EchoInput = true
				c.Trace = trace
				c.Version = version
				c.Run()
				return nil
			}

			if plain || !isTerminal() {
				c := cli.New(s)
				c.Trace = trace
				c.Version = version
				c.Run()
				return nil
			}
			return tui.Run(s, version)
		},
	}
	cmd.Flags().StringVar(&scriptFile, "script", "", "Read commands from a file")
	cmd.Flags().BoolVar(&plain, "plain", false, "Line console even on a terminal")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print the events each command causes")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <ruleset-dir>",
		Short: "Open the terminal inspector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.Run(s, version)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "civcore %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
