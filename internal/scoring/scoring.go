// Package scoring turns Likert answers into a readiness score and maturity label.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"taicc-readiness/internal/model"
)

var (
	ErrNoAnswers    = errors.New("no answers to score")
	ErrScoreInvalid = errors.New("score must be between 1 and 5")
)

const (
	MinScore = 1
	MaxScore = 5
)

type band struct {
	upper float64
	label model.MaturityLabel
}

// Bands are contiguous; each covers (previous upper, upper].
var bands = []band{
	{1.0, model.Beginner},
	{2.0, model.Emerging},
	{3.0, model.Established},
	{4.0, model.Advanced},
	{5.0, model.AILeader},
}

// ValidScore reports whether v is on the 1..5 scale.
func ValidScore(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// Average returns the mean of values rounded to two decimals.
func Average(values []int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoAnswers
	}
	sum := 0
	for _, v := range values {
		if !ValidScore(v) {
			return 0, fmt.Errorf("%w: got %d", ErrScoreInvalid, v)
		}
		sum += v
	}
	return Round2(float64(sum) / float64(len(values))), nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Classify maps an average onto its maturity label; anything outside [0,5]
// is Undefined.
func Classify(avg float64) model.MaturityLabel {
	if math.IsNaN(avg) || avg < 0 {
		return model.Undefined
	}
	for _, b := range bands {
		if avg <= b.upper {
			return b.label
		}
	}
	return model.Undefined
}

// Score computes the session's ScoreResult.
func Score(values []int) (model.ScoreResult, error) {
	avg, err := Average(values)
	if err != nil {
		return model.ScoreResult{}, err
	}
	return model.ScoreResult{Average: avg, Maturity: Classify(avg)}, nil
}

// RunningAverages returns the rounded mean after each answer, used for the
// trend chart.
func RunningAverages(values []int) []float64 {
	out := make([]float64, 0, len(values))
	sum := 0
	for i, v := range values {
		sum += v
		out = append(out, Round2(float64(sum)/float64(i+1)))
	}
	return out
}
