package differ

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yairfalse/vahti/pkg/types"
)

// Tags attached by the engine itself, before any classifier reason.
const (
	TagNew     = "New"
	TagDeleted = "Deleted"
)

// ErrInvalidSnapshot means the current snapshot carries no usable start
// timestamp. Nothing can be compared without one.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Options control how Compare classifies what it finds.
type Options struct {
	// Now anchors every staleness check in one comparison. Zero means
	// the wall clock is read once at the start of the call.
	Now time.Time

	// ScheduleGrace is how long a CronJob may go unscheduled before it
	// is flagged.
	ScheduleGrace time.Duration

	// SuccessGrace is how far lastScheduleTime may run ahead of
	// lastSuccessfulTime before the CronJob is flagged.
	SuccessGrace time.Duration

	// SuppressedOwners lists owner kinds whose pods are dropped from
	// the report. Nil selects the default; an empty non-nil slice
	// disables suppression.
	SuppressedOwners []string
}

// DefaultOptions returns the grace periods and owner suppression used
// when the caller does not override them.
func DefaultOptions() Options {
	return Options{
		ScheduleGrace:    7 * 24 * time.Hour,
		SuccessGrace:     24 * time.Hour,
		SuppressedOwners: []string{"Job"},
	}
}

// Engine compares two snapshots and classifies every object that
// changed or looks unhealthy.
type Engine struct {
	opts Options
}

// NewEngine fills zero-valued options from DefaultOptions.
func NewEngine(opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.ScheduleGrace == 0 {
		opts.ScheduleGrace = defaults.ScheduleGrace
	}
	if opts.SuccessGrace == 0 {
		opts.SuccessGrace = defaults.SuccessGrace
	}
	if opts.SuppressedOwners == nil {
		opts.SuppressedOwners = defaults.SuppressedOwners
	}
	return &Engine{opts: opts}
}

// Compare diffs current against previous and returns one finding per
// noteworthy object. Objects present only in previous are tagged
// Deleted and classified no further; objects present only in current
// are tagged New and still classified, since a brand-new object can
// already be failing. Healthy unchanged objects are omitted.
//
// A nil previous snapshot is treated as empty, so every current object
// comes back New. The report's Delta is zero when the previous start
// timestamp is missing or unreadable.
func (e *Engine) Compare(current, previous *types.Snapshot) (*types.Report, error) {
	if current == nil {
		return nil, fmt.Errorf("%w: no current snapshot", ErrInvalidSnapshot)
	}
	start, err := current.Metadata.StartTime()
	if err != nil {
		return nil, fmt.Errorf("%w: current start %q: %v", ErrInvalidSnapshot, current.Metadata.Start, err)
	}

	if previous == nil {
		previous = &types.Snapshot{}
	}
	var delta time.Duration
	if prevStart, err := previous.Metadata.StartTime(); err == nil {
		delta = start.Sub(prevStart)
	}

	now := e.opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	analyzer := newCronJobAnalyzer(now, e.opts.ScheduleGrace, e.opts.SuccessGrace)
	suppressed := func(pod types.Pod) bool {
		return OwnedBy(pod, e.opts.SuppressedOwners)
	}

	return &types.Report{
		Metadata: types.ReportMetadata{
			Now:   start,
			Delta: delta,
		},
		CronJobs:     diffKind(current.CronJobs, previous.CronJobs, analyzer.Classify, nil),
		Jobs:         diffKind(current.Jobs, previous.Jobs, nil, nil),
		Deployments:  diffKind(current.Deployments, previous.Deployments, classifyDeployment, nil),
		StatefulSets: diffKind(current.StatefulSets, previous.StatefulSets, classifyStatefulSet, nil),
		Pods:         diffKind(current.Pods, previous.Pods, classifyPod, suppressed),
	}, nil
}

// diffKind walks the union of names in one kind partition. classify
// and suppress may be nil for kinds that have no failure signature or
// no owner filter.
func diffKind[R any](current, previous map[string]R, classify func(R) string, suppress func(R) bool) map[string]string {
	findings := make(map[string]string)

	for name, record := range current {
		if suppress != nil && suppress(record) {
			continue
		}
		var tags []string
		if _, ok := previous[name]; !ok {
			tags = append(tags, TagNew)
		}
		if classify != nil {
			if reason := classify(record); reason != "" {
				tags = append(tags, reason)
			}
		}
		if len(tags) > 0 {
			findings[name] = strings.Join(tags, ", ")
		}
	}

	for name, record := range previous {
		if _, ok := current[name]; ok {
			continue
		}
		if suppress != nil && suppress(record) {
			continue
		}
		findings[name] = TagDeleted
	}

	return findings
}
