package differ

import (
	"testing"

	"github.com/yairfalse/vahti/pkg/types"
)

func TestClassifyReplicas(t *testing.T) {
	tests := []struct {
		name   string
		status types.ReplicaStatus
		want   string
	}{
		{
			name:   "all ready",
			status: types.ReplicaStatus{Replicas: 3, ReadyReplicas: 3},
			want:   "",
		},
		{
			name:   "partially ready",
			status: types.ReplicaStatus{Replicas: 3, ReadyReplicas: 1},
			want:   "1/3 Ready",
		},
		{
			name:   "none ready",
			status: types.ReplicaStatus{Replicas: 1, ReadyReplicas: 0},
			want:   "0/1 Ready",
		},
		{
			name:   "scaled to zero",
			status: types.ReplicaStatus{Replicas: 0, ReadyReplicas: 0},
			want:   "",
		},
		{
			name:   "more ready than desired",
			status: types.ReplicaStatus{Replicas: 1, ReadyReplicas: 2},
			want:   "2/1 Ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyReplicas(tt.status); got != tt.want {
				t.Errorf("classifyReplicas() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyPod(t *testing.T) {
	tests := []struct {
		phase string
		want  string
	}{
		{phase: "Pending", want: "Pending"},
		{phase: "Unknown", want: "Unknown"},
		{phase: "Running", want: ""},
		{phase: "Succeeded", want: ""},
		{phase: "Failed", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			p := types.Pod{Status: types.PodStatus{Phase: tt.phase}}
			if got := classifyPod(p); got != tt.want {
				t.Errorf("classifyPod(%s) = %q, want %q", tt.phase, got, tt.want)
			}
		})
	}
}

func TestOwnedBy(t *testing.T) {
	jobPod := pod("Running", types.OwnerReference{Kind: "Job", Name: "batch"})
	replicaSetPod := pod("Running", types.OwnerReference{Kind: "ReplicaSet", Name: "web-5d8f"})
	orphan := pod("Running")

	tests := []struct {
		name  string
		pod   types.Pod
		kinds []string
		want  bool
	}{
		{name: "job pod suppressed by Job", pod: jobPod, kinds: []string{"Job"}, want: true},
		{name: "replicaset pod not suppressed by Job", pod: replicaSetPod, kinds: []string{"Job"}, want: false},
		{name: "orphan pod never suppressed", pod: orphan, kinds: []string{"Job"}, want: false},
		{name: "empty kind set", pod: jobPod, kinds: nil, want: false},
		{name: "multiple kinds", pod: replicaSetPod, kinds: []string{"Job", "ReplicaSet"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnedBy(tt.pod, tt.kinds); got != tt.want {
				t.Errorf("OwnedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}
