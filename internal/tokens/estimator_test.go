package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateNeverZeroForText(t *testing.T) {
	e := NewEstimator("gpt-4")
	assert.Greater(t, e.Estimate("Senior Go engineer with ten years of experience."), 0)
}

func TestEstimateEmpty(t *testing.T) {
	e := NewEstimator("gpt-4")
	assert.Equal(t, 0, e.Estimate(""))
}

func TestEstimateUnknownModelFallsBack(t *testing.T) {
	e := NewEstimator("definitely-not-a-model")
	got := e.Estimate("hello world, this is a token estimate")
	assert.Greater(t, got, 0)
}

func TestEstimateScalesWithLength(t *testing.T) {
	e := NewEstimator("gpt-4")
	short := e.Estimate("resume")
	long := e.Estimate(strings.Repeat("resume keyword analysis ", 100))
	assert.Greater(t, long, short)
}
