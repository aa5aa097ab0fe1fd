package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taicc-readiness/internal/model"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		avg  float64
		want model.MaturityLabel
	}{
		{0, model.Beginner},
		{1.0, model.Beginner},
		{1.1, model.Emerging},
		{2.0, model.Emerging},
		{2.1, model.Established},
		{3.0, model.Established},
		{3.1, model.Advanced},
		{3.5, model.Advanced},
		{4.0, model.Advanced},
		{4.1, model.AILeader},
		{5.0, model.AILeader},
		{1.05, model.Emerging},
		{-0.5, model.Undefined},
		{5.01, model.Undefined},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.avg), "avg %.2f", tc.avg)
	}
}

func TestAverageRoundsToTwoDecimals(t *testing.T) {
	avg, err := Average([]int{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.67, avg)

	avg, err = Average([]int{4, 3})
	require.NoError(t, err)
	assert.Equal(t, 3.5, avg)
}

func TestAverageEmptyFails(t *testing.T) {
	_, err := Average(nil)
	assert.ErrorIs(t, err, ErrNoAnswers)

	_, err = Score([]int{})
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestAverageRejectsOutOfScale(t *testing.T) {
	_, err := Average([]int{3, 6})
	assert.ErrorIs(t, err, ErrScoreInvalid)
}

func TestScoreExamples(t *testing.T) {
	res, err := Score([]int{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, model.ScoreResult{Average: 1.0, Maturity: model.Beginner}, res)

	res, err = Score([]int{5, 5, 5, 5, 5, 5, 5, 5, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, 4.8, res.Average)
	assert.Equal(t, model.AILeader, res.Maturity)
}

func TestEveryValidAnswerSetHasALabel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	known := map[model.MaturityLabel]bool{
		model.Beginner: true, model.Emerging: true, model.Established: true,
		model.Advanced: true, model.AILeader: true,
	}
	for i := 0; i < 2000; i++ {
		n := rng.Intn(40) + 1
		values := make([]int, n)
		for j := range values {
			values[j] = rng.Intn(5) + 1
		}
		res, err := Score(values)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Average, 1.0)
		assert.LessOrEqual(t, res.Average, 5.0)
		assert.True(t, known[res.Maturity], "average %.2f mapped to %q", res.Average, res.Maturity)
	}
}

func TestRunningAverages(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 3.33}, RunningAverages([]int{2, 4, 4}))
	assert.Empty(t, RunningAverages(nil))
}
