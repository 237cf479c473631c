package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbastian/winnow/pkg/dist"
	"github.com/tbastian/winnow/pkg/prune"
	"github.com/tbastian/winnow/pkg/region"
	"github.com/tbastian/winnow/pkg/scenario"
)

// pruneOpts holds the command-line flags for the prune command.
type pruneOpts struct {
	pitch float64 // voxel pitch as a fraction of the largest region extent
}

// newPruneCmd creates the prune command, which loads a YAML scenario
// and runs all pruning passes over it.
func newPruneCmd() *cobra.Command {
	opts := pruneOpts{pitch: prune.PruningPitch}

	cmd := &cobra.Command{
		Use:   "prune <scenario.yaml>",
		Short: "Prune impossible placements from a scenario's sample space",
		Long: `Prune loads a YAML scenario description and statically narrows each
object's placement region using containment, relative heading, and
visibility requirements.

An infeasible scenario (an object that cannot satisfy its requirements
anywhere) is reported as an error.

Example:
  winnow prune scenario.yaml
  winnow prune -v --pitch 0.005 scenario.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd, args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.pitch, "pitch", opts.pitch,
		"voxel pitch as a fraction of the largest region extent")

	return cmd
}

func runPrune(cmd *cobra.Command, path string, opts pruneOpts) error {
	logger := loggerFromContext(cmd.Context())

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}
	scn, err := buildScenario(data)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded scenario with %d objects", len(scn.Objects))

	pruner := prune.New(prune.WithLogger(logger), prune.WithPitch(opts.pitch))
	if err := pruner.Prune(scn); err != nil {
		var invalid *scenario.InvalidScenarioError
		if errors.As(err, &invalid) {
			return fmt.Errorf("scenario is infeasible: %w", err)
		}
		return err
	}

	for _, obj := range scn.Objects {
		base := baseRegionOf(obj.Position)
		if base == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: position not region-based\n", obj.Name)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %dD region, size %.4g\n",
			obj.Name, base.Dimensionality(), base.Size())
	}
	return nil
}

// baseRegionOf unwraps an object's (possibly conditioned, possibly
// offset) position down to the region it is drawn from.
func baseRegionOf(position dist.Node) region.Region {
	n := dist.Resolve(position)
	if op, ok := n.(*dist.Operator); ok && (op.Op == dist.OpAdd || op.Op == dist.OpRAdd) {
		n = dist.Resolve(op.Object)
	}
	if pt, ok := n.(*region.PointIn); ok {
		return pt.Region
	}
	return nil
}
