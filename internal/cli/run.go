package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/config"
	"github.com/gzhole/faultcorpus/internal/console"
	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/fixture"
	"github.com/gzhole/faultcorpus/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run <fixture> [args...]",
	Short: "Invoke one fixture and report its fault descriptor",
	Long: `Invoke a single fixture by ID. Arguments after the fixture ID are passed
to it verbatim; gets-overflow takes none and reads one line from stdin.

Fixtures:
  strcpy-overflow  [input]
  gets-overflow    (reads stdin)
  format-string    <template>
  integer-overflow <size> [data]
  use-after-free
  memory-leak      <count>

Examples:
  faultcorpus run integer-overflow 4294967290
  echo "a-very-long-username-that-does-not-fit" | faultcorpus run gets-overflow
  faultcorpus run --format json memory-leak 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := fixture.Default()
	name, fixtureArgs := args[0], args[1:]
	f, err := reg.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w (known: %s)", err, strings.Join(fixtureNames(reg), ", "))
	}

	env := fixture.NewEnv(cfg.HeapLimit)
	env.Stdout = cmd.OutOrStdout()

	// Capture what the fixture reads so the log shows the offending line.
	var consumed bytes.Buffer
	if name == fixture.IDGetsOverflow {
		env.Stdin = io.TeeReader(cmd.InOrStdin(), &consumed)
	}

	desc, invokeErr := reg.Invoke(name, env, fixtureArgs)

	event := logger.FaultEvent{
		Fixture:    name,
		Category:   f.Category(),
		Args:       fixtureArgs,
		Stdin:      consumed.String(),
		Descriptor: desc,
		Source:     "run",
	}
	if invokeErr != nil {
		event.Error = invokeErr.Error()
	}
	if err := record(cfg, event); err != nil {
		return err
	}

	if invokeErr != nil {
		if errors.Is(invokeErr, fixture.ErrBadArgs) {
			return fmt.Errorf("%w\nusage: faultcorpus run %s %s", invokeErr, name, f.Usage())
		}
		return invokeErr
	}

	return report(cmd, cfg, name, desc)
}

// report writes a descriptor in the configured format. A nil descriptor is
// reported as "no fault" in text and as null in the structured formats.
func report(cmd *cobra.Command, cfg *config.Config, name string, desc *fault.Descriptor) error {
	out := cmd.OutOrStdout()
	if cfg.Format == fault.FormatText {
		console.NewPrinter(out).Fault(name, desc)
		return nil
	}
	return fault.Encode(out, cfg.Format, desc)
}

func fixtureNames(reg *fixture.Registry) []string {
	var names []string
	for _, f := range reg.Fixtures() {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}
