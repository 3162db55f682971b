package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name       string
		matching   []string
		missing    []string
		additional []string
		want       int
	}{
		{
			name:       "typical analysis",
			matching:   []string{"go", "postgres", "docker"},
			missing:    []string{"kubernetes"},
			additional: []string{"grpc", "terraform"},
			want:       67,
		},
		{
			name: "all empty",
			want: 20,
		},
		{
			name:     "perfect match no extras",
			matching: []string{"go", "postgres"},
			want:     80,
		},
		{
			name:       "perfect match with saturated extras",
			matching:   []string{"a", "b", "c"},
			additional: []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10"},
			want:       100,
		},
		{
			name:    "nothing matches",
			missing: []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9", "m10"},
			want:    0,
		},
		{
			name:       "duplicates do not inflate the score",
			matching:   []string{"go", "go", "go"},
			missing:    []string{"kubernetes"},
			additional: []string{"grpc", "grpc"},
			want:       50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.matching, tt.missing, tt.additional)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchScoreBounds(t *testing.T) {
	// Large inputs must still land inside [0, 100].
	var matching, missing, additional []string
	for i := 0; i < 200; i++ {
		matching = append(matching, string(rune('a'+i%26))+string(rune('0'+i%10)))
	}
	score := MatchScore(matching, missing, additional)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestMatchScoreMonotonicInMatching(t *testing.T) {
	missing := []string{"m1", "m2"}
	prev := -1
	matching := []string{}
	for i := 0; i < 20; i++ {
		matching = append(matching, string(rune('a'+i))+"kw")
		score := MatchScore(matching, missing, nil)
		assert.GreaterOrEqual(t, score, prev, "adding a matching keyword must never lower the score")
		prev = score
	}
}

func TestMatchScoreMonotonicInMissing(t *testing.T) {
	matching := []string{"a", "b", "c"}
	prev := 101
	missing := []string{}
	for i := 0; i < 20; i++ {
		missing = append(missing, string(rune('a'+i))+"gap")
		score := MatchScore(matching, missing, nil)
		assert.LessOrEqual(t, score, prev, "adding a missing keyword must never raise the score")
		prev = score
	}
}
