package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	vahtierrors "github.com/yairfalse/vahti/internal/errors"
	"github.com/yairfalse/vahti/internal/logger"
	"github.com/yairfalse/vahti/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vahti",
	Short: "A watchdog for Kubernetes workloads",
	Long: `VAHTI - Finnish for guard.

Vahti captures snapshots of a cluster's workloads on a schedule, compares
the two newest ones and mails out what changed and what looks unhealthy:
CronJobs that stopped firing, Deployments missing replicas, Pods stuck in
Pending.

Two commands do the work:
  vahti snapshot      # capture cluster state into the snapshot directory
  vahti report        # compare the two newest snapshots and mail the result

Both are built to run as CronJobs inside the cluster they watch. Use
'vahti diff' interactively to see what the next report would say.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code that reflects the
// error category.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		vahtierrors.DisplayError(err)
		os.Exit(vahtierrors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vahti/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newSnapshotCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return fmt.Errorf("failed to expand config paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return vahtierrors.New(vahtierrors.ErrorTypeConfiguration, vahtierrors.ComponentUnknown,
			"Invalid configuration").
			WithCause(err.Error()).
			WithSolutions("Fix the reported setting in config.yaml or the VAHTI_* environment")
	}

	if cfg.Output.NoColor {
		color.NoColor = true
	}

	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
