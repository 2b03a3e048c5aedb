package types

import (
	"errors"
	"time"
)

// SnapshotVersion is stamped into every snapshot this build produces.
const SnapshotVersion = "1"

// Snapshot is a point-in-time capture of cluster workload state, partitioned
// by resource kind. Objects are keyed by name. Snapshots are immutable once
// produced; the diff engine only ever reads them.
type Snapshot struct {
	Metadata     SnapshotMetadata       `json:"metadata"`
	CronJobs     map[string]CronJob     `json:"cronjobs"`
	Jobs         map[string]Job         `json:"jobs"`
	Deployments  map[string]Deployment  `json:"deployments"`
	StatefulSets map[string]StatefulSet `json:"statefulsets"`
	Pods         map[string]Pod         `json:"pods"`
}

// SnapshotMetadata bounds the capture window. Start and End stay raw strings
// in the record so one malformed timestamp can never fail decoding of a whole
// snapshot file; callers parse them when they need an instant.
type SnapshotMetadata struct {
	Version string `json:"version"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// StartTime parses the capture start timestamp.
func (m SnapshotMetadata) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, m.Start)
}

// EndTime parses the capture end timestamp.
func (m SnapshotMetadata) EndTime() (time.Time, error) {
	return time.Parse(time.RFC3339, m.End)
}

// CronJob records the schedule spec and the last observed activity of a
// cluster CronJob.
type CronJob struct {
	Spec   CronJobSpec   `json:"spec"`
	Status CronJobStatus `json:"status"`
}

// CronJobSpec holds the fields of the cluster spec the report cares about.
type CronJobSpec struct {
	Schedule string `json:"schedule"`
	Suspend  bool   `json:"suspend"`
}

// CronJobStatus times are nullable on the wire; pointers keep null
// round-tripping. Values are ISO 8601 UTC.
type CronJobStatus struct {
	LastScheduleTime   *string `json:"lastScheduleTime"`
	LastSuccessfulTime *string `json:"lastSuccessfulTime"`
}

// Job records pod counts for a batch Job.
type Job struct {
	Status JobStatus `json:"status"`
}

// JobStatus mirrors the cluster's active/succeeded/failed pod counters.
type JobStatus struct {
	Active    int32 `json:"active"`
	Succeeded int32 `json:"succeeded"`
	Failed    int32 `json:"failed"`
}

// ReplicaStatus is the desired-versus-ready pair shared by the replicated
// workload kinds.
type ReplicaStatus struct {
	Replicas      int32 `json:"replicas"`
	ReadyReplicas int32 `json:"readyReplicas"`
}

// Deployment records the replica health of a Deployment.
type Deployment struct {
	Status ReplicaStatus `json:"status"`
}

// StatefulSet records the replica health of a StatefulSet.
type StatefulSet struct {
	Status ReplicaStatus `json:"status"`
}

// Pod records the phase and ownership of a pod.
type Pod struct {
	Metadata PodMetadata `json:"metadata"`
	Status   PodStatus   `json:"status"`
}

// PodMetadata carries the owner references used to decide whether another
// object reports on the pod's behalf.
type PodMetadata struct {
	OwnerReferences []OwnerReference `json:"ownerReferences"`
}

// OwnerReference is a reduced owner record: kind and name are all the report
// needs.
type OwnerReference struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// PodStatus holds the pod lifecycle phase, verbatim from the cluster.
type PodStatus struct {
	Phase string `json:"phase"`
}

// NewSnapshot returns an empty snapshot stamped with the current version and
// the given start time.
func NewSnapshot(start time.Time) *Snapshot {
	return &Snapshot{
		Metadata: SnapshotMetadata{
			Version: SnapshotVersion,
			Start:   start.UTC().Format(time.RFC3339),
		},
		CronJobs:     make(map[string]CronJob),
		Jobs:         make(map[string]Job),
		Deployments:  make(map[string]Deployment),
		StatefulSets: make(map[string]StatefulSet),
		Pods:         make(map[string]Pod),
	}
}

// Validate checks that a snapshot is complete enough to persist. Only the
// producer calls this; loading tolerates damaged records so a single bad
// object surfaces as a finding instead of killing the run.
func (s *Snapshot) Validate() error {
	if s.Metadata.Version == "" {
		return errors.New("snapshot version is required")
	}
	if s.Metadata.Start == "" {
		return errors.New("snapshot start time is required")
	}
	if _, err := s.Metadata.StartTime(); err != nil {
		return errors.New("snapshot start time is not a valid timestamp: " + s.Metadata.Start)
	}
	return nil
}

// ObjectCount returns the number of objects across all kinds.
func (s *Snapshot) ObjectCount() int {
	return len(s.CronJobs) + len(s.Jobs) + len(s.Deployments) + len(s.StatefulSets) + len(s.Pods)
}

// String returns a short description of the snapshot.
func (s *Snapshot) String() string {
	return "snapshot " + s.Metadata.Start
}
