package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/vahti/internal/collectors/kubernetes"
	vahtierrors "github.com/yairfalse/vahti/internal/errors"
	"github.com/yairfalse/vahti/internal/storage"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "snapshot",
		Short:        "Capture cluster workload state",
		SilenceUsage: true,
		Long: `Snapshot lists CronJobs, Jobs, Deployments, StatefulSets and Pods across
the configured namespaces and writes one timestamped JSON file into the
snapshot directory.

Run it on a schedule; 'vahti report' reads the two newest files the runs
leave behind.`,
		Example: `  # Capture the whole cluster
  vahti snapshot

  # Capture selected namespaces with an explicit kubeconfig
  vahti snapshot --namespace production --namespace batch --kubeconfig ~/.kube/prod

  # Keep only the newest 14 files
  vahti snapshot --max-history 14`,
		RunE: runSnapshot,
	}

	cmd.Flags().StringSlice("namespace", nil, "namespaces to capture (default: all)")
	cmd.Flags().String("kubeconfig", "", "path to kubeconfig (default: in-cluster, then ~/.kube/config)")
	cmd.Flags().String("context", "", "kubeconfig context to use")
	cmd.Flags().Int("max-history", -1, "prune all but the newest N snapshots after saving (0 keeps all)")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if namespaces, _ := cmd.Flags().GetStringSlice("namespace"); len(namespaces) > 0 {
		cfg.Kubernetes.Namespaces = namespaces
	}
	if kubeconfig, _ := cmd.Flags().GetString("kubeconfig"); kubeconfig != "" {
		cfg.Kubernetes.Kubeconfig = kubeconfig
	}
	if kubeContext, _ := cmd.Flags().GetString("context"); kubeContext != "" {
		cfg.Kubernetes.Context = kubeContext
	}
	if maxHistory, _ := cmd.Flags().GetInt("max-history"); maxHistory >= 0 {
		cfg.Snapshots.MaxHistory = maxHistory
	}

	client, err := kubernetes.NewClient(kubernetes.ClientOptions{
		Kubeconfig:         cfg.Kubernetes.Kubeconfig,
		Context:            cfg.Kubernetes.Context,
		InsecureSkipVerify: cfg.Kubernetes.InsecureSkipVerify,
	})
	if err != nil {
		return vahtierrors.KubernetesConnectionError(cfg.Kubernetes.Context, err)
	}

	collector := kubernetes.NewCollector(client, log, cfg.Kubernetes.Namespaces)
	snapshot, err := collector.Collect(cmd.Context())
	if err != nil {
		return err
	}

	store, err := storage.NewLocalStorage(storage.Config{BaseDir: cfg.Snapshots.Dir})
	if err != nil {
		return err
	}

	path, err := store.SaveSnapshot(snapshot)
	if err != nil {
		return err
	}

	if cfg.Snapshots.MaxHistory > 0 {
		// The snapshot is already on disk at this point.
		pruned, err := store.Prune(cfg.Snapshots.MaxHistory)
		if err != nil {
			vahtierrors.DisplayWarning(fmt.Sprintf("could not prune old snapshots: %v", err))
		} else if pruned > 0 {
			log.WithField("pruned", pruned).Info("removed old snapshots")
		}
	}

	vahtierrors.DisplaySuccess(fmt.Sprintf("Captured %d objects to %s", snapshot.ObjectCount(), path))
	return nil
}
