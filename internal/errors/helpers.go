package errors

import (
	"fmt"
	"strings"
)

// KubernetesConnectionError creates a cluster connection error
func KubernetesConnectionError(context string, originalErr error) *VahtiError {
	err := New(ErrorTypeNetwork, ComponentKubernetes, "Kubernetes connection failed")

	if context != "" {
		err.WithCause(fmt.Sprintf("Current context '%s' is not accessible", context))
	} else if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		`kubectl config get-contexts`,
		`kubectl config use-context working-context`,
		`Check if cluster is running: kubectl cluster-info`,
		`Verify VPN connection if using remote cluster`,
	)

	err.WithVerify("kubectl cluster-info")
	err.WithHelp("vahti snapshot --help")

	return err
}

// KubernetesConfigError creates a kubeconfig discovery error
func KubernetesConfigError() *VahtiError {
	err := New(ErrorTypeConfiguration, ComponentKubernetes, "Kubernetes configuration not found")
	err.WithCause("No kubeconfig file found and not running in-cluster")

	err.WithSolutions(
		`Ensure kubectl is configured: kubectl config view`,
		`Set KUBECONFIG environment variable`,
		`Copy config to ~/.kube/config`,
		`When deploying in-cluster, mount a service account token`,
	)

	err.WithVerify("kubectl config current-context")
	err.WithHelp("vahti snapshot --help")

	return err
}

// KubernetesPermissionError creates an RBAC error for a resource list call
func KubernetesPermissionError(resource string, originalErr error) *VahtiError {
	err := New(ErrorTypePermission, ComponentKubernetes, fmt.Sprintf("Permission denied listing %s", resource))

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		fmt.Sprintf(`kubectl auth can-i list %s --all-namespaces`, strings.ToLower(resource)),
		`Grant the service account a role that can list workload resources`,
		`Contact your cluster administrator for access`,
	)

	err.WithVerify("kubectl auth can-i --list")
	err.WithHelp("vahti snapshot --help")

	return err
}

// NoSnapshotsError signals an empty snapshot directory
func NoSnapshotsError(dir string) *VahtiError {
	err := New(ErrorTypeFileSystem, ComponentStorage, "No snapshots found")
	err.WithCause(fmt.Sprintf("No .json snapshot files in %s", dir))

	err.WithSolutions(
		`Run 'vahti snapshot' to capture the current cluster state`,
		`Check snapshots.dir in ~/.vahti/config.yaml`,
		`Set SNAPSHOT_DIR if snapshots live elsewhere`,
	)

	err.WithVerify(fmt.Sprintf("ls %s", dir))
	err.WithHelp("vahti snapshot --help")

	return err
}

// SnapshotCorruptError signals a snapshot file that cannot be decoded
func SnapshotCorruptError(path string, originalErr error) *VahtiError {
	err := New(ErrorTypeValidation, ComponentStorage, "Snapshot file is not readable")
	err.WithCause(fmt.Sprintf("%s: %v", path, originalErr))

	err.WithSolutions(
		`Remove the damaged file and capture a fresh snapshot`,
		`Check for partial writes from a full disk`,
	)

	err.WithVerify(fmt.Sprintf("cat %s | head", path))

	return err
}

// SMTPConfigError signals missing mail settings
func SMTPConfigError(missing string) *VahtiError {
	err := New(ErrorTypeConfiguration, ComponentSMTP, "SMTP not configured")
	err.WithCause(fmt.Sprintf("Missing setting: %s", missing))

	err.WithSolutions(
		`export SMTP_HOST=mail.example.com TO=ops@example.com FROM=vahti@example.com`,
		`Or set the smtp section in ~/.vahti/config.yaml`,
		`Use 'vahti report --dry-run' to preview without mail settings`,
	)

	err.WithHelp("vahti report --help")

	return err
}

// SMTPDeliveryError signals a failed mail hand-off
func SMTPDeliveryError(host string, originalErr error) *VahtiError {
	err := New(ErrorTypeNetwork, ComponentSMTP, "Report delivery failed")

	if originalErr != nil {
		err.WithCause(originalErr.Error())
	}

	err.WithSolutions(
		fmt.Sprintf(`Check the relay is reachable: nc -vz %s 25`, host),
		`Verify SMTP_USE_SSL matches what the relay expects`,
		`Check credentials if the relay requires authentication`,
	)

	err.WithVerify(fmt.Sprintf("nc -vz %s 25", host))
	err.WithHelp("vahti report --help")

	return err
}
