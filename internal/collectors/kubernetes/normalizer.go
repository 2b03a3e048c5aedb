package kubernetes

import (
	"time"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/yairfalse/vahti/pkg/types"
)

// The normalizers strip API objects down to the fields classification
// needs, in the shape the snapshot files carry.

func normalizeCronJob(cronJob *batchv1.CronJob) types.CronJob {
	spec := types.CronJobSpec{Schedule: cronJob.Spec.Schedule}
	if cronJob.Spec.Suspend != nil {
		spec.Suspend = *cronJob.Spec.Suspend
	}

	return types.CronJob{
		Spec: spec,
		Status: types.CronJobStatus{
			LastScheduleTime:   normalizeTime(cronJob.Status.LastScheduleTime),
			LastSuccessfulTime: normalizeTime(cronJob.Status.LastSuccessfulTime),
		},
	}
}

func normalizeJob(job *batchv1.Job) types.Job {
	return types.Job{
		Status: types.JobStatus{
			Active:    job.Status.Active,
			Succeeded: job.Status.Succeeded,
			Failed:    job.Status.Failed,
		},
	}
}

func normalizeDeployment(deployment *appsv1.Deployment) types.Deployment {
	return types.Deployment{
		Status: types.ReplicaStatus{
			Replicas:      deployment.Status.Replicas,
			ReadyReplicas: deployment.Status.ReadyReplicas,
		},
	}
}

func normalizeStatefulSet(statefulSet *appsv1.StatefulSet) types.StatefulSet {
	return types.StatefulSet{
		Status: types.ReplicaStatus{
			Replicas:      statefulSet.Status.Replicas,
			ReadyReplicas: statefulSet.Status.ReadyReplicas,
		},
	}
}

func normalizePod(pod *corev1.Pod) types.Pod {
	owners := make([]types.OwnerReference, 0, len(pod.OwnerReferences))
	for _, owner := range pod.OwnerReferences {
		owners = append(owners, types.OwnerReference{
			Kind: owner.Kind,
			Name: owner.Name,
		})
	}

	return types.Pod{
		Metadata: types.PodMetadata{OwnerReferences: owners},
		Status:   types.PodStatus{Phase: string(pod.Status.Phase)},
	}
}

// normalizeTime renders an API timestamp as RFC3339 UTC, keeping nil
// for fields the controller has never set
func normalizeTime(t *metav1.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
