package types

import "time"

// Report summarizes what changed between two snapshots and which objects look
// unhealthy. Keys are object names; values are comma-joined descriptor tags
// ("New", "Deleted", or a failure reason). A name that is absent has nothing
// noteworthy about it. Reports are derived values and are never persisted by
// the comparison itself.
type Report struct {
	Metadata     ReportMetadata    `json:"metadata"`
	CronJobs     map[string]string `json:"cronjobs"`
	Jobs         map[string]string `json:"jobs"`
	Deployments  map[string]string `json:"deployments"`
	StatefulSets map[string]string `json:"statefulsets"`
	Pods         map[string]string `json:"pods"`
}

// ReportMetadata anchors the report in time: Now is the current snapshot's
// capture start, Delta the gap back to the previous one (zero on a first
// run).
type ReportMetadata struct {
	Now   time.Time     `json:"now"`
	Delta time.Duration `json:"delta"`
}

// Section pairs a kind's display name with its findings.
type Section struct {
	Kind     string
	Findings map[string]string
}

// Sections returns the report's kinds in display order. Renderers iterate
// this instead of reaching into individual fields so every surface shows the
// same order.
func (r *Report) Sections() []Section {
	return []Section{
		{Kind: "CronJobs", Findings: r.CronJobs},
		{Kind: "Jobs", Findings: r.Jobs},
		{Kind: "Deployments", Findings: r.Deployments},
		{Kind: "StatefulSets", Findings: r.StatefulSets},
		{Kind: "Pods", Findings: r.Pods},
	}
}

// HasFindings reports whether anything at all was flagged.
func (r *Report) HasFindings() bool {
	return r.FindingCount() > 0
}

// FindingCount returns the total number of flagged objects across all kinds.
func (r *Report) FindingCount() int {
	n := 0
	for _, section := range r.Sections() {
		n += len(section.Findings)
	}
	return n
}
