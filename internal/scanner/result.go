package scanner

import (
	"time"
)

// Status classifies a finding or a whole category.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
)

// Severity weights how much a finding matters when scoring.
// It is fixed per check type at creation time and never reinterpreted.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Fixed category names. Exactly one CategoryResult exists per name;
// categories are never added or removed during a scan.
const (
	CategorySSL          = "ssl"
	CategoryHeaders      = "headers"
	CategoryCMS          = "cms"
	CategoryExposedFiles = "exposed_files"
	CategoryMalware      = "malware"
	CategoryPerformance  = "performance"
)

// CategoryNames lists all scan categories in report order.
var CategoryNames = []string{
	CategorySSL,
	CategoryHeaders,
	CategoryCMS,
	CategoryExposedFiles,
	CategoryMalware,
	CategoryPerformance,
}

// Remediation carries the static guidance attached to a finding.
type Remediation struct {
	WhatItMeans string `json:"what_it_means"`
	HowToFix    string `json:"how_to_fix"`
}

// Finding is one discrete observation within a category. Findings are
// append-only and ordered by check-definition order, not arrival order.
type Finding struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Remediation *Remediation   `json:"remediation,omitempty"`
}

// CategoryResult holds the outcome of one check category.
// A nil Score means the category could not be evaluated and is excluded
// from weighted aggregation.
type CategoryResult struct {
	Status   Status         `json:"status"`
	Score    *int           `json:"score"`
	Findings []Finding      `json:"findings"`
	Details  map[string]any `json:"details,omitempty"`
}

// Summary tallies findings across all categories. It is always recomputed
// from the findings themselves to prevent drift.
type Summary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
	Critical int `json:"critical"`
}

// Scan lifecycle status values carried on ScanResult.
const (
	ScanStatusRunning  = "running"
	ScanStatusComplete = "complete"
)

// ScanResult is the root artifact of a scan. It is progressively filled
// while the scan runs and sealed once the aggregator has computed the
// overall score and grade.
type ScanResult struct {
	Target      Target                     `json:"target"`
	StartedAt   time.Time                  `json:"started_at"`
	CompletedAt time.Time                  `json:"completed_at,omitempty"`
	Status      string                     `json:"status"`
	Score       int                        `json:"score"`
	Grade       string                     `json:"grade"`
	Summary     Summary                    `json:"summary"`
	Categories  map[string]*CategoryResult `json:"categories"`
}

// newScanResult builds a ScanResult with every category initialized to a
// pending state so callers always see the full fixed category set.
func newScanResult(target Target) *ScanResult {
	categories := make(map[string]*CategoryResult, len(CategoryNames))
	for _, name := range CategoryNames {
		categories[name] = &CategoryResult{
			Status:   StatusError,
			Findings: []Finding{},
		}
	}
	return &ScanResult{
		Target:     target,
		StartedAt:  time.Now().UTC(),
		Status:     ScanStatusRunning,
		Categories: categories,
	}
}

// Clone returns a deep copy suitable for handing to progress callbacks
// while category goroutines are still writing.
func (r *ScanResult) Clone() ScanResult {
	out := *r
	out.Categories = make(map[string]*CategoryResult, len(r.Categories))
	for name, cat := range r.Categories {
		if cat == nil {
			continue
		}
		cc := *cat
		if cat.Score != nil {
			score := *cat.Score
			cc.Score = &score
		}
		cc.Findings = make([]Finding, len(cat.Findings))
		copy(cc.Findings, cat.Findings)
		if cat.Details != nil {
			cc.Details = make(map[string]any, len(cat.Details))
			for k, v := range cat.Details {
				cc.Details[k] = v
			}
		}
		out.Categories[name] = &cc
	}
	return out
}

// intPtr is a small helper for the Score field.
func intPtr(v int) *int {
	return &v
}

// clampScore keeps a running deduction inside the 0-100 range.
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// statusForScore maps a category score onto pass/warning/fail using the
// category's thresholds.
func statusForScore(score, passAt, warnAt int) Status {
	switch {
	case score >= passAt:
		return StatusPass
	case score >= warnAt:
		return StatusWarning
	default:
		return StatusFail
	}
}
