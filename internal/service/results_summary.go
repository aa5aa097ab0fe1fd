package service

import (
	"time"

	"taicc-readiness/internal/model"
	"taicc-readiness/internal/scoring"
)

// ResultsSummary aggregates stored results for the admin view.
type ResultsSummary struct {
	Count        int            `json:"count"`
	AverageScore float64        `json:"average_score"`
	ByMaturity   map[string]int `json:"by_maturity"`
	ByDomain     map[string]int `json:"by_domain"`
	FirstAt      *time.Time     `json:"first_at,omitempty"`
	LatestAt     *time.Time     `json:"latest_at,omitempty"`
}

// SummarizeResults computes counts and the mean score over results.
func SummarizeResults(results []model.AssessmentResult) ResultsSummary {
	sum := ResultsSummary{
		Count:      len(results),
		ByMaturity: map[string]int{},
		ByDomain:   map[string]int{},
	}
	if len(results) == 0 {
		return sum
	}

	var total float64
	first, latest := results[0].CompletedAt, results[0].CompletedAt
	for _, r := range results {
		total += r.Score
		sum.ByMaturity[r.Maturity]++
		sum.ByDomain[r.Domain]++
		if r.CompletedAt.Before(first) {
			first = r.CompletedAt
		}
		if r.CompletedAt.After(latest) {
			latest = r.CompletedAt
		}
	}
	sum.AverageScore = scoring.Round2(total / float64(len(results)))
	sum.FirstAt = &first
	sum.LatestAt = &latest
	return sum
}
