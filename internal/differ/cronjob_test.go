package differ

import (
	"errors"
	"testing"
	"time"

	"github.com/yairfalse/vahti/pkg/types"
)

func cronJob(schedule string, suspend bool, lastSchedule, lastSuccess *string) types.CronJob {
	return types.CronJob{
		Spec:   types.CronJobSpec{Schedule: schedule, Suspend: suspend},
		Status: types.CronJobStatus{LastScheduleTime: lastSchedule, LastSuccessfulTime: lastSuccess},
	}
}

func rfc3339(t time.Time) *string {
	value := t.UTC().Format(time.RFC3339)
	return &value
}

func timeRef(value string) *string {
	return &value
}

func TestCronJobAnalyzer_Classify(t *testing.T) {
	// testNow is 2023-05-01T06:00:00Z.
	analyzer := newCronJobAnalyzer(testNow, 7*24*time.Hour, 24*time.Hour)

	tests := []struct {
		name    string
		cronJob types.CronJob
		want    string
	}{
		{
			name:    "suspended is always healthy",
			cronJob: cronJob("0 * * * *", true, nil, nil),
			want:    "",
		},
		{
			name:    "suspended skips even malformed fields",
			cronJob: cronJob("bogus", true, timeRef("not-a-time"), nil),
			want:    "",
		},
		{
			name:    "never scheduled",
			cronJob: cronJob("0 * * * *", false, nil, nil),
			want:    "Never scheduled",
		},
		{
			name:    "never scheduled but has a success",
			cronJob: cronJob("0 * * * *", false, nil, rfc3339(testNow.Add(-time.Hour))),
			want:    "Never scheduled (but has run successfully)",
		},
		{
			name:    "never successfully ran",
			cronJob: cronJob("0 * * * *", false, rfc3339(testNow.Add(-time.Hour)), nil),
			want:    "Never successfully ran",
		},
		{
			name: "recently scheduled and successful",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-30*time.Minute)),
				rfc3339(testNow.Add(-30*time.Minute))),
			want: "",
		},
		{
			name: "one second past schedule grace with missed fires",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-7*24*time.Hour-time.Second)),
				rfc3339(testNow.Add(-7*24*time.Hour-time.Second))),
			want: "Has not been scheduled in 1 week",
		},
		{
			name: "one second inside schedule grace",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-7*24*time.Hour+time.Second)),
				rfc3339(testNow.Add(-7*24*time.Hour+time.Second))),
			want: "",
		},
		{
			name: "exactly at schedule grace",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-7*24*time.Hour)),
				rfc3339(testNow.Add(-7*24*time.Hour))),
			want: "",
		},
		{
			name: "long gap a yearly schedule explains",
			cronJob: cronJob("0 0 1 1 *", false,
				timeRef("2023-01-01T00:00:00Z"),
				timeRef("2023-01-01T00:00:00Z")),
			want: "Has not been scheduled in 4 months (but this might be expected)",
		},
		{
			name: "long gap a monthly schedule does not explain",
			cronJob: cronJob("0 0 1 * *", false,
				timeRef("2023-01-01T00:00:00Z"),
				timeRef("2023-01-01T00:00:00Z")),
			want: "Has not been scheduled in 4 months",
		},
		{
			name: "success lagging behind schedule",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-time.Hour)),
				rfc3339(testNow.Add(-26*time.Hour))),
			want: "Has not run successfully in 1 day",
		},
		{
			name: "success lag exactly at grace",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-time.Hour)),
				rfc3339(testNow.Add(-25*time.Hour))),
			want: "",
		},
		{
			name: "stale schedule and stale success together",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-8*24*time.Hour)),
				rfc3339(testNow.Add(-10*24*time.Hour))),
			want: "Has not been scheduled in 1 week, Has not run successfully in 1 week",
		},
		{
			name: "malformed schedule inside grace is not consulted",
			cronJob: cronJob("bogus", false,
				rfc3339(testNow.Add(-time.Hour)),
				rfc3339(testNow.Add(-time.Hour))),
			want: "",
		},
		{
			name: "malformed schedule past grace",
			cronJob: cronJob("bogus", false,
				rfc3339(testNow.Add(-8*24*time.Hour)),
				rfc3339(testNow.Add(-8*24*time.Hour))),
			want: `Invalid schedule "bogus"`,
		},
		{
			name:    "malformed lastScheduleTime",
			cronJob: cronJob("0 * * * *", false, timeRef("not-a-time"), nil),
			want:    `Invalid lastScheduleTime "not-a-time"`,
		},
		{
			name: "malformed lastSuccessfulTime",
			cronJob: cronJob("0 * * * *", false,
				rfc3339(testNow.Add(-time.Hour)),
				timeRef("later")),
			want: `Invalid lastSuccessfulTime "later"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyzer.Classify(tt.cronJob); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMalformedScheduleError(t *testing.T) {
	inner := errors.New("unexpected character")
	err := &MalformedScheduleError{Field: "schedule", Value: "* * bogus", Err: inner}

	if got := err.Error(); got != `Invalid schedule "* * bogus"` {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose the parse error")
	}
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name string
		gap  time.Duration
		want string
	}{
		{name: "hours", gap: 5 * time.Hour, want: "5 hours"},
		{name: "one day", gap: 26 * time.Hour, want: "1 day"},
		{name: "days", gap: 3 * 24 * time.Hour, want: "3 days"},
		{name: "one week", gap: 8 * 24 * time.Hour, want: "1 week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := elapsed(testNow.Add(-tt.gap), testNow); got != tt.want {
				t.Errorf("elapsed(%v) = %q, want %q", tt.gap, got, tt.want)
			}
		})
	}
}
