package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/config"
	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/fixture"
	"github.com/gzhole/faultcorpus/internal/logger"
)

var (
	configPath  string
	logPath     string
	catalogPath string
	format      string
)

var rootCmd = &cobra.Command{
	Use:   "faultcorpus [input]",
	Short: "faultcorpus - deterministic single-defect fixtures",
	Long: `faultcorpus is a corpus of six fixtures, each encoding exactly one
memory-safety or input-handling defect at a fixed boundary. Defects are
simulated and reported as fault descriptors, so the corpus can serve as
ground truth for analyzers, sanitizers and fuzzers.

Given one argument, faultcorpus copies it into a 64-byte buffer without a
length check (the strcpy-overflow fixture) and reports what happened. It
exits 0 whether or not the defect triggered. The argument is taken
verbatim, dashes included, unless it names a subcommand or asks for help.

Examples:
  faultcorpus hi                          # no fault
  faultcorpus "$(printf 'A%.0s' {1..100})" # OutOfBoundsWrite, observed 100
  faultcorpus run format-string '%x %n'
  faultcorpus verify`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          entryCommand,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.faultcorpus/config.yaml or config.toml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to fault log file (default: ~/.faultcorpus/faults.jsonl)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to case catalog YAML (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Output format: text, json, yaml or msgpack")
}

func Execute() error {
	rootCmd.SetArgs(entryArgs(os.Args[1:]))
	return rootCmd.Execute()
}

// entryArgs makes a lone argument reach the fixture verbatim, even when it
// looks like a flag. Subcommand names and the help flags keep their
// meaning.
func entryArgs(args []string) []string {
	if len(args) != 1 || reserved(args[0]) {
		return args
	}
	return []string{"--", args[0]}
}

func reserved(arg string) bool {
	switch arg {
	case "--", "-h", "--help", "help", "completion":
		return true
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == arg || c.HasAlias(arg) {
			return true
		}
	}
	return false
}

func entryCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	env := fixture.NewEnv(cfg.HeapLimit)
	env.Stdin = cmd.InOrStdin()
	env.Stdout = cmd.OutOrStdout()

	desc, err := fixture.Default().Invoke(fixture.IDStrcpyOverflow, env, args)
	if err != nil {
		return err
	}

	if err := record(cfg, logger.FaultEvent{
		Fixture:    fixture.IDStrcpyOverflow,
		Category:   fault.OutOfBoundsWrite,
		Args:       args,
		Descriptor: desc,
		Source:     "entry",
	}); err != nil {
		return err
	}

	return report(cmd, cfg, fixture.IDStrcpyOverflow, desc)
}

// loadConfig resolves the config and applies --format over the file value.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, logPath, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if format != "" {
		f, err := fault.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		cfg.Format = f
	}
	return cfg, nil
}

// record appends one event to the fault log.
func record(cfg *config.Config, events ...logger.FaultEvent) error {
	faultLogger, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to initialize fault logger: %w", err)
	}
	defer faultLogger.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, event := range events {
		if event.Timestamp == "" {
			event.Timestamp = now
		}
		if err := faultLogger.Log(event); err != nil {
			return fmt.Errorf("failed to write fault log: %w", err)
		}
	}
	return nil
}
