package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/vahti/internal/differ"
	vahtierrors "github.com/yairfalse/vahti/internal/errors"
	"github.com/yairfalse/vahti/internal/output"
	"github.com/yairfalse/vahti/internal/storage"
	"github.com/yairfalse/vahti/pkg/types"
)

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "diff",
		Short:        "Show workload changes between snapshots (like 'git diff' for the cluster)",
		SilenceUsage: true,
		Long: `Diff compares two snapshots and prints what changed and what looks
unhealthy. Without arguments it compares the two newest files in the
snapshot directory, exactly what the scheduled report would mail.

Exit codes: 0 = nothing to report, 1 = findings.`,
		Example: `  # What would tonight's mail say?
  vahti diff

  # Compare two specific snapshot files
  vahti diff --from old.json --to new.json

  # Machine-readable output
  vahti diff --format json

  # Use in scripts
  vahti diff --quiet || echo "cluster has findings"`,
		RunE: runDiff,
	}

	cmd.Flags().String("from", "", "previous snapshot file (default: second newest)")
	cmd.Flags().String("to", "", "current snapshot file (default: newest)")
	cmd.Flags().String("format", "", "output format (text, html, json, yaml)")
	cmd.Flags().BoolP("quiet", "q", false, "suppress output, exit with status only")
	cmd.Flags().Duration("schedule-grace", 0, "override how long a CronJob may go unscheduled")
	cmd.Flags().Duration("success-grace", 0, "override how far success may lag behind scheduling")
	cmd.Flags().StringSlice("suppress-owner", nil, "owner kinds whose pods are not reported")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	fromPath, _ := cmd.Flags().GetString("from")
	toPath, _ := cmd.Flags().GetString("to")
	quiet, _ := cmd.Flags().GetBool("quiet")

	store, err := storage.NewLocalStorage(storage.Config{BaseDir: cfg.Snapshots.Dir})
	if err != nil {
		return err
	}

	var current, previous *types.Snapshot
	switch {
	case toPath != "":
		current, err = store.LoadSnapshot(toPath)
		if err != nil {
			return vahtierrors.SnapshotCorruptError(toPath, err)
		}
		if fromPath != "" {
			previous, err = store.LoadSnapshot(fromPath)
			if err != nil {
				return vahtierrors.SnapshotCorruptError(fromPath, err)
			}
		}
	case fromPath != "":
		return vahtierrors.New(vahtierrors.ErrorTypeValidation, vahtierrors.ComponentReport,
			"--from requires --to").
			WithSolutions("Pass both files: vahti diff --from old.json --to new.json")
	default:
		current, previous, err = store.LatestPair()
		if err != nil {
			if errors.Is(err, storage.ErrNoSnapshots) {
				return vahtierrors.NoSnapshotsError(store.Dir())
			}
			return vahtierrors.SnapshotCorruptError(store.Dir(), err)
		}
	}

	opts := differ.Options{
		ScheduleGrace:    cfg.Report.ScheduleGrace,
		SuccessGrace:     cfg.Report.SuccessGrace,
		SuppressedOwners: cfg.Report.SuppressedOwners,
	}
	if scheduleGrace, _ := cmd.Flags().GetDuration("schedule-grace"); scheduleGrace > 0 {
		opts.ScheduleGrace = scheduleGrace
	}
	if successGrace, _ := cmd.Flags().GetDuration("success-grace"); successGrace > 0 {
		opts.SuccessGrace = successGrace
	}
	if cmd.Flags().Changed("suppress-owner") {
		owners, _ := cmd.Flags().GetStringSlice("suppress-owner")
		opts.SuppressedOwners = owners
	}

	report, err := differ.NewEngine(opts).Compare(current, previous)
	if err != nil {
		if errors.Is(err, differ.ErrInvalidSnapshot) {
			return vahtierrors.SnapshotCorruptError(store.Dir(), err)
		}
		return err
	}

	if !quiet {
		name := cfg.Output.Format
		if flagFormat, _ := cmd.Flags().GetString("format"); flagFormat != "" {
			name = flagFormat
		}
		format, err := output.ParseFormat(name)
		if err != nil {
			return err
		}

		data, err := output.NewRenderer(cfg.Output.NoColor).Render(report, format)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if report.HasFindings() {
		os.Exit(1) // Findings present - like git diff
	}
	return nil
}
