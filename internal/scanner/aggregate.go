package scanner

import (
	"math"
	"time"
)

// categoryWeights is the canonical weight table used for the overall score.
// Weights sum to 100; categories whose score could not be computed are
// excluded from both numerator and denominator.
var categoryWeights = map[string]int{
	CategorySSL:          25,
	CategoryHeaders:      20,
	CategoryCMS:          15,
	CategoryExposedFiles: 20,
	CategoryMalware:      15,
	CategoryPerformance:  5,
}

// Aggregate computes the weighted mean of all evaluated category scores.
// Deterministic: identical category inputs always yield the same score.
func Aggregate(categories map[string]*CategoryResult) int {
	weighted := 0
	totalWeight := 0
	for name, weight := range categoryWeights {
		cat, ok := categories[name]
		if !ok || cat == nil || cat.Score == nil {
			continue
		}
		weighted += *cat.Score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(float64(weighted) / float64(totalWeight)))
}

// GradeFor maps an overall score onto a letter grade.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Summarize buckets every finding across every category. It always rescans
// the findings rather than maintaining running counts, so the summary can
// never drift from the findings it describes.
func Summarize(categories map[string]*CategoryResult) Summary {
	var sum Summary
	for _, cat := range categories {
		if cat == nil {
			continue
		}
		for _, f := range cat.Findings {
			switch f.Status {
			case StatusPass:
				sum.Passed++
			case StatusWarning:
				sum.Warnings++
			case StatusFail:
				if f.Severity == SeverityCritical {
					sum.Critical++
				} else {
					sum.Failed++
				}
			default:
				sum.Failed++
			}
		}
	}
	return sum
}

// finalize seals a scan result: overall score, grade, summary, completion
// timestamp. Must only run after every category task has joined.
func finalize(r *ScanResult) {
	r.Score = Aggregate(r.Categories)
	r.Grade = GradeFor(r.Score)
	r.Summary = Summarize(r.Categories)
	r.CompletedAt = time.Now().UTC()
	r.Status = ScanStatusComplete
}
