package differ

import (
	"errors"
	"testing"
	"time"

	"github.com/yairfalse/vahti/pkg/types"
)

var testNow = time.Date(2023, 5, 1, 6, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(Options{Now: testNow})
}

func snapshotAt(start string) *types.Snapshot {
	return &types.Snapshot{
		Metadata: types.SnapshotMetadata{Version: types.SnapshotVersion, Start: start},
	}
}

func deployment(replicas, ready int32) types.Deployment {
	return types.Deployment{Status: types.ReplicaStatus{Replicas: replicas, ReadyReplicas: ready}}
}

func pod(phase string, owners ...types.OwnerReference) types.Pod {
	return types.Pod{
		Metadata: types.PodMetadata{OwnerReferences: owners},
		Status:   types.PodStatus{Phase: phase},
	}
}

func TestEngine_Compare_Deployments(t *testing.T) {
	previous := snapshotAt("2023-04-30T06:00:00Z")
	previous.Deployments = map[string]types.Deployment{
		"A": deployment(2, 2),
	}
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Deployments = map[string]types.Deployment{
		"A": deployment(2, 1),
		"B": deployment(1, 1),
	}

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.Deployments["A"]; got != "1/2 Ready" {
		t.Errorf("A: expected %q, got %q", "1/2 Ready", got)
	}
	if got := report.Deployments["B"]; got != "New" {
		t.Errorf("B: expected %q, got %q", "New", got)
	}
	if len(report.Deployments) != 2 {
		t.Errorf("Expected 2 deployment findings, got %d", len(report.Deployments))
	}
}

func TestEngine_Compare_DeletionPrecedence(t *testing.T) {
	// A deleted object is reported as Deleted and nothing else, even
	// if its last observed state was unhealthy.
	previous := snapshotAt("2023-04-30T06:00:00Z")
	previous.Deployments = map[string]types.Deployment{
		"gone": deployment(3, 0),
	}
	current := snapshotAt("2023-05-01T06:00:00Z")

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.Deployments["gone"]; got != "Deleted" {
		t.Errorf("Expected %q, got %q", "Deleted", got)
	}
}

func TestEngine_Compare_NewAndFailingCoOccur(t *testing.T) {
	previous := snapshotAt("2023-04-30T06:00:00Z")
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Pods = map[string]types.Pod{
		"stuck": pod("Pending", types.OwnerReference{Kind: "ReplicaSet", Name: "stuck-5d8f"}),
	}

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.Pods["stuck"]; got != "New, Pending" {
		t.Errorf("Expected %q, got %q", "New, Pending", got)
	}
}

func TestEngine_Compare_Idempotence(t *testing.T) {
	snapshot := snapshotAt("2023-05-01T06:00:00Z")
	snapshot.Deployments = map[string]types.Deployment{
		"healthy": deployment(2, 2),
		"limping": deployment(3, 1),
	}
	snapshot.StatefulSets = map[string]types.StatefulSet{
		"db": {Status: types.ReplicaStatus{Replicas: 1, ReadyReplicas: 1}},
	}

	report, err := testEngine().Compare(snapshot, snapshot)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	// No churn tags when nothing changed, but failure classification
	// still applies.
	if got := report.Deployments["limping"]; got != "1/3 Ready" {
		t.Errorf("limping: expected %q, got %q", "1/3 Ready", got)
	}
	if _, ok := report.Deployments["healthy"]; ok {
		t.Error("Healthy unchanged deployment should be omitted")
	}
	if len(report.StatefulSets) != 0 {
		t.Errorf("Expected no statefulset findings, got %+v", report.StatefulSets)
	}
}

func TestEngine_Compare_SetCompleteness(t *testing.T) {
	// Every name from either snapshot is either tagged or healthy;
	// none disappear silently.
	previous := snapshotAt("2023-04-30T06:00:00Z")
	previous.Jobs = map[string]types.Job{
		"kept":    {},
		"removed": {},
	}
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Jobs = map[string]types.Job{
		"kept":  {},
		"added": {},
	}

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	want := map[string]string{
		"added":   "New",
		"removed": "Deleted",
	}
	if len(report.Jobs) != len(want) {
		t.Fatalf("Expected %d job findings, got %+v", len(want), report.Jobs)
	}
	for name, reason := range want {
		if got := report.Jobs[name]; got != reason {
			t.Errorf("%s: expected %q, got %q", name, reason, got)
		}
	}
	if _, ok := report.Jobs["kept"]; ok {
		t.Error("Unchanged job should be omitted")
	}
}

func TestEngine_Compare_OwnershipSuppression(t *testing.T) {
	previous := snapshotAt("2023-04-30T06:00:00Z")
	previous.Pods = map[string]types.Pod{
		"batch-old-xyz": pod("Succeeded", types.OwnerReference{Kind: "Job", Name: "batch-old"}),
	}
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Pods = map[string]types.Pod{
		"batch-new-abc": pod("Pending", types.OwnerReference{Kind: "Job", Name: "batch-new"}),
		"web-def":       pod("Pending", types.OwnerReference{Kind: "ReplicaSet", Name: "web-5d8f"}),
	}

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if _, ok := report.Pods["batch-new-abc"]; ok {
		t.Error("Job-owned pod should be suppressed")
	}
	if _, ok := report.Pods["batch-old-xyz"]; ok {
		t.Error("Deleted Job-owned pod should be suppressed")
	}
	if got := report.Pods["web-def"]; got != "New, Pending" {
		t.Errorf("web-def: expected %q, got %q", "New, Pending", got)
	}
}

func TestEngine_Compare_SuppressionDisabled(t *testing.T) {
	engine := NewEngine(Options{Now: testNow, SuppressedOwners: []string{}})

	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Pods = map[string]types.Pod{
		"batch-abc": pod("Pending", types.OwnerReference{Kind: "Job", Name: "batch"}),
	}

	report, err := engine.Compare(current, snapshotAt("2023-04-30T06:00:00Z"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.Pods["batch-abc"]; got != "New, Pending" {
		t.Errorf("Expected %q with suppression disabled, got %q", "New, Pending", got)
	}
}

func TestEngine_Compare_InvalidSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		current *types.Snapshot
	}{
		{name: "nil current", current: nil},
		{name: "missing start", current: &types.Snapshot{}},
		{name: "unparsable start", current: snapshotAt("yesterday")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testEngine().Compare(tt.current, snapshotAt("2023-04-30T06:00:00Z"))
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("Expected ErrInvalidSnapshot, got %v", err)
			}
		})
	}
}

func TestEngine_Compare_Metadata(t *testing.T) {
	previous := snapshotAt("2023-04-30T06:00:00Z")
	current := snapshotAt("2023-05-01T06:00:00Z")

	report, err := testEngine().Compare(current, previous)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	wantNow := time.Date(2023, 5, 1, 6, 0, 0, 0, time.UTC)
	if !report.Metadata.Now.Equal(wantNow) {
		t.Errorf("Expected now %v, got %v", wantNow, report.Metadata.Now)
	}
	if report.Metadata.Delta != 24*time.Hour {
		t.Errorf("Expected delta 24h, got %v", report.Metadata.Delta)
	}
}

func TestEngine_Compare_DeltaZeroWithoutPreviousStart(t *testing.T) {
	report, err := testEngine().Compare(snapshotAt("2023-05-01T06:00:00Z"), &types.Snapshot{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if report.Metadata.Delta != 0 {
		t.Errorf("Expected zero delta, got %v", report.Metadata.Delta)
	}
}

func TestEngine_Compare_NilPrevious(t *testing.T) {
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.Deployments = map[string]types.Deployment{
		"web": deployment(1, 1),
	}

	report, err := testEngine().Compare(current, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.Deployments["web"]; got != "New" {
		t.Errorf("Expected %q, got %q", "New", got)
	}
	if report.Metadata.Delta != 0 {
		t.Errorf("Expected zero delta, got %v", report.Metadata.Delta)
	}
}

func TestEngine_Compare_CronJobFlowsThrough(t *testing.T) {
	schedule := "0 3 * * *"
	current := snapshotAt("2023-05-01T06:00:00Z")
	current.CronJobs = map[string]types.CronJob{
		"backup": {
			Spec:   types.CronJobSpec{Schedule: schedule},
			Status: types.CronJobStatus{},
		},
	}

	report, err := testEngine().Compare(current, snapshotAt("2023-04-30T06:00:00Z"))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := report.CronJobs["backup"]; got != "New, Never scheduled" {
		t.Errorf("Expected %q, got %q", "New, Never scheduled", got)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := NewEngine(Options{})

	if engine.opts.ScheduleGrace != 7*24*time.Hour {
		t.Errorf("Expected 7d schedule grace, got %v", engine.opts.ScheduleGrace)
	}
	if engine.opts.SuccessGrace != 24*time.Hour {
		t.Errorf("Expected 1d success grace, got %v", engine.opts.SuccessGrace)
	}
	if len(engine.opts.SuppressedOwners) != 1 || engine.opts.SuppressedOwners[0] != "Job" {
		t.Errorf("Expected default suppressed owners [Job], got %v", engine.opts.SuppressedOwners)
	}
}
