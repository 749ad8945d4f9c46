package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		goal string
		want []string
	}{
		{
			name: "then separator",
			goal: "fetch data then clean data then publish",
			want: []string{"fetch data", "clean data", "publish"},
		},
		{
			name: "semicolon separator",
			goal: "fetch data; clean data",
			want: []string{"fetch data", "clean data"},
		},
		{
			name: "comma and",
			goal: "fetch data, and clean data",
			want: []string{"fetch data", "clean data"},
		},
		{
			name: "bare and",
			goal: "fetch data and clean data",
			want: []string{"fetch data", "clean data"},
		},
		{
			name: "then wins over and",
			goal: "fetch and clean then publish and archive",
			want: []string{"fetch and clean", "publish and archive"},
		},
		{
			name: "sentences",
			goal: "Fetch the data. Clean the data.",
			want: []string{"Fetch the data", "Clean the data"},
		},
		{
			name: "unsplittable",
			goal: "reindex the catalog",
			want: []string{"reindex the catalog"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, splitText(tc.goal))
		})
	}
}

func TestStringSliceCoercion(t *testing.T) {
	t.Parallel()

	got, ok := stringSlice([]any{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	_, ok = stringSlice([]any{"a", 7})
	assert.False(t, ok)

	_, ok = stringSlice("not a slice")
	assert.False(t, ok)
}

func TestPhaseSliceCoercion(t *testing.T) {
	t.Parallel()

	got, ok := phaseSlice([]any{[]any{"a", "b"}, []any{"c"}})
	assert.True(t, ok)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, got)

	_, ok = phaseSlice([]any{"flat string"})
	assert.False(t, ok)

	_, ok = phaseSlice([]any{[]any{"  "}})
	assert.False(t, ok)
}
