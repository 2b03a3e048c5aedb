package differ

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/yairfalse/vahti/pkg/types"
)

// MalformedScheduleError reports a CronJob whose schedule expression or
// recorded timestamps cannot be parsed. It stays confined to the object
// that carries the bad field; the rest of the comparison proceeds.
type MalformedScheduleError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedScheduleError) Error() string {
	return fmt.Sprintf("Invalid %s %q", e.Field, e.Value)
}

func (e *MalformedScheduleError) Unwrap() error {
	return e.Err
}

// cronJobAnalyzer decides whether a CronJob has gone quiet for longer
// than its own schedule explains. All checks are anchored to the same
// now instant so one comparison stays internally consistent.
type cronJobAnalyzer struct {
	now           time.Time
	scheduleGrace time.Duration
	successGrace  time.Duration
}

func newCronJobAnalyzer(now time.Time, scheduleGrace, successGrace time.Duration) *cronJobAnalyzer {
	return &cronJobAnalyzer{
		now:           now,
		scheduleGrace: scheduleGrace,
		successGrace:  successGrace,
	}
}

// Classify returns a reason string for CronJobs that look stuck, or ""
// for healthy ones. Suspended jobs are healthy no matter what their
// status fields say. A job that has never been scheduled, or scheduled
// but never successful, is flagged outright. Beyond that, two checks
// run in order: whether the job has been scheduled within the schedule
// grace, and whether its last success has kept up with its last
// schedule within the success grace. Both reasons can co-occur.
//
// When the schedule grace is exceeded but the cron expression predicts
// no fire between lastScheduleTime and now, the gap is what the
// schedule dictates and the reason is softened instead of alarmed.
//
// Unparsable schedule or timestamp fields become the finding for that
// one object rather than an error for the whole run.
func (a *cronJobAnalyzer) Classify(cronJob types.CronJob) string {
	if cronJob.Spec.Suspend {
		return ""
	}

	scheduled, err := parseOptionalTime("lastScheduleTime", cronJob.Status.LastScheduleTime)
	if err != nil {
		return err.Error()
	}
	successful, err := parseOptionalTime("lastSuccessfulTime", cronJob.Status.LastSuccessfulTime)
	if err != nil {
		return err.Error()
	}

	if scheduled == nil {
		// Successful-but-never-scheduled is inconsistent upstream
		// state. Label it distinctly instead of pretending it cannot
		// happen.
		if successful != nil {
			return "Never scheduled (but has run successfully)"
		}
		return "Never scheduled"
	}
	if successful == nil {
		return "Never successfully ran"
	}

	var reasons []string
	if a.now.Sub(*scheduled) > a.scheduleGrace {
		reason := "Has not been scheduled in " + elapsed(*scheduled, a.now)
		expected, err := a.onSchedule(cronJob.Spec.Schedule, *scheduled)
		if err != nil {
			return err.Error()
		}
		if expected {
			reason += " (but this might be expected)"
		}
		reasons = append(reasons, reason)
	}
	if scheduled.Sub(*successful) > a.successGrace {
		reasons = append(reasons, "Has not run successfully in "+elapsed(*successful, a.now))
	}
	return strings.Join(reasons, ", ")
}

// onSchedule reports whether the cron expression predicts no fire time
// strictly between lastScheduled and now, meaning the observed gap is
// exactly what the schedule dictates.
func (a *cronJobAnalyzer) onSchedule(spec string, lastScheduled time.Time) (bool, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return false, &MalformedScheduleError{Field: "schedule", Value: spec, Err: err}
	}
	return !schedule.Next(lastScheduled).Before(a.now), nil
}

func parseOptionalTime(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, &MalformedScheduleError{Field: field, Value: *value, Err: err}
	}
	return &parsed, nil
}

// elapsed renders the gap between two instants the way a human would
// say it, e.g. "3 days" or "1 week".
func elapsed(from, to time.Time) string {
	return strings.TrimSpace(humanize.RelTime(from, to, "", ""))
}
