package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/vahti/internal/differ"
	vahtierrors "github.com/yairfalse/vahti/internal/errors"
	"github.com/yairfalse/vahti/internal/mailer"
	"github.com/yairfalse/vahti/internal/output"
	"github.com/yairfalse/vahti/internal/storage"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "report",
		Short:        "Compare the two newest snapshots and mail the result",
		SilenceUsage: true,
		Long: `Report loads the two newest snapshots from the snapshot directory, works
out what changed and which workloads look unhealthy, and mails the result.

With a single snapshot on disk everything counts as new and the comparison
window is omitted; the mail still goes out so the first run is visible.`,
		Example: `  # Compare and send the mail
  vahti report

  # Print the mail body instead of sending it
  vahti report --dry-run

  # Inspect the report as JSON
  vahti report --dry-run --format json`,
		RunE: runReport,
	}

	cmd.Flags().Bool("dry-run", false, "print the report instead of mailing it")
	cmd.Flags().String("format", "", "dry-run output format (text, html, json, yaml)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, err := storage.NewLocalStorage(storage.Config{BaseDir: cfg.Snapshots.Dir})
	if err != nil {
		return err
	}

	current, previous, err := store.LatestPair()
	if err != nil {
		if errors.Is(err, storage.ErrNoSnapshots) {
			return vahtierrors.NoSnapshotsError(store.Dir())
		}
		return vahtierrors.SnapshotCorruptError(store.Dir(), err)
	}

	engine := differ.NewEngine(differ.Options{
		ScheduleGrace:    cfg.Report.ScheduleGrace,
		SuccessGrace:     cfg.Report.SuccessGrace,
		SuppressedOwners: cfg.Report.SuppressedOwners,
	})

	report, err := engine.Compare(current, previous)
	if err != nil {
		if errors.Is(err, differ.ErrInvalidSnapshot) {
			return vahtierrors.SnapshotCorruptError(store.Dir(), err)
		}
		return err
	}

	if dryRun {
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
		return nil
	}

	if err := cfg.ValidateSMTP(); err != nil {
		return vahtierrors.SMTPConfigError(err.Error())
	}

	if err := mailer.New(cfg.SMTP, log).Send(cmd.Context(), report); err != nil {
		return vahtierrors.SMTPDeliveryError(cfg.SMTP.Host, err)
	}

	vahtierrors.DisplaySuccess(fmt.Sprintf("Report with %d findings sent to %s", report.FindingCount(), cfg.SMTP.To))
	return nil
}
