package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/console"
	"github.com/gzhole/faultcorpus/internal/fixture"
	"github.com/gzhole/faultcorpus/internal/logger"
)

var errProbesFailed = errors.New("probe verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay every catalog probe and check each fixture's boundary",
	Long: `Replay the ground-truth probes of every catalog case against its fixture
and check fault presence, category and observed length. Exits non-zero if
any probe fails.

  faultcorpus verify
  faultcorpus verify --catalog ./cases.yaml`,
	Args: cobra.NoArgs,
	RunE: verifyCommand,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func verifyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := fixture.Default()
	cat, err := loadCatalog(cfg, reg)
	if err != nil {
		return err
	}

	results, err := fixture.Verify(cmd.Context(), reg, cat.Cases, cfg.HeapLimit)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	p := console.NewPrinter(cmd.OutOrStdout())
	events := make([]logger.FaultEvent, 0, len(results))
	passed := 0
	for _, r := range results {
		p.Result(r.Pass, fmt.Sprintf("%s#%d", r.CaseID, r.Index), r.Failures)
		if r.Pass {
			passed++
		}

		event := logger.FaultEvent{
			Fixture:    r.CaseID,
			Args:       r.Args,
			Stdin:      r.Stdin,
			Descriptor: r.Got,
			Source:     "verify",
		}
		if fc, ok := cat.Case(r.CaseID); ok {
			event.Category = fc.Category
		}
		if r.Err != nil {
			event.Error = r.Err.Error()
		}
		events = append(events, event)
	}

	if err := record(cfg, events...); err != nil {
		return err
	}

	p.Dim("%d/%d probes passed across %d cases", passed, len(results), len(cat.Cases))
	if passed != len(results) {
		return fmt.Errorf("%w: %d of %d probes", errProbesFailed, len(results)-passed, len(results))
	}
	return nil
}
