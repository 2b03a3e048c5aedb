package differ

import (
	"fmt"

	"github.com/yairfalse/vahti/pkg/types"
)

// Pod phases that mean a pod is stuck waiting or unreachable.
const (
	podPending = "Pending"
	podUnknown = "Unknown"
)

// classifyReplicas flags any workload whose ready count has diverged
// from its desired count at capture time.
func classifyReplicas(status types.ReplicaStatus) string {
	if status.ReadyReplicas == status.Replicas {
		return ""
	}
	return fmt.Sprintf("%d/%d Ready", status.ReadyReplicas, status.Replicas)
}

func classifyDeployment(deployment types.Deployment) string {
	return classifyReplicas(deployment.Status)
}

func classifyStatefulSet(statefulSet types.StatefulSet) string {
	return classifyReplicas(statefulSet.Status)
}

// classifyPod reports the phase of pods that are not making progress.
// Failed and Succeeded pods are left for their owning controller to
// surface.
func classifyPod(pod types.Pod) string {
	switch pod.Status.Phase {
	case podPending, podUnknown:
		return pod.Status.Phase
	}
	return ""
}

// OwnedBy reports whether any owner of the pod matches one of the
// given kinds.
func OwnedBy(pod types.Pod, kinds []string) bool {
	for _, owner := range pod.Metadata.OwnerReferences {
		for _, kind := range kinds {
			if owner.Kind == kind {
				return true
			}
		}
	}
	return false
}
