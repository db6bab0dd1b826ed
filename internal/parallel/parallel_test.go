package parallel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapReduce_SumMerge(t *testing.T) {
	words := []string{"a", "b", "a", "c", "a", "b"}
	for i := 0; i < 200; i++ {
		words = append(words, "z")
	}

	counts, err := MapReduce(context.Background(), words,
		func() map[string]int { return map[string]int{} },
		func(acc map[string]int, w string) map[string]int {
			acc[w]++
			return acc
		},
		SumMerge[string, int],
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 3, "b": 2, "c": 1, "z": 200}, counts)
}

func TestMapReduce_Empty(t *testing.T) {
	counts, err := MapReduce(context.Background(), []int(nil),
		func() int { return 0 },
		func(acc, v int) int { return acc + v },
		func(acc, part int) int { return acc + part },
	)
	require.NoError(t, err)
	assert.Equal(t, 0, counts)
}

func TestMapReduce_MergesInOrder(t *testing.T) {
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}

	got, err := MapReduce(context.Background(), items,
		func() []int { return nil },
		func(acc []int, v int) []int { return append(acc, v) },
		func(acc, part []int) []int { return append(acc, part...) },
	)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestMapReduce_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MapReduce(ctx, []int{1, 2, 3},
		func() int { return 0 },
		func(acc, v int) int { return acc + v },
		func(acc, part int) int { return acc + part },
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMap(t *testing.T) {
	out, err := Map(context.Background(), []int{1, 2, 3, 4}, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16}, out)
}

func TestMap_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Map(context.Background(), []int{1, 2, 3}, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		n, parts int
		want     []chunk
	}{
		{"empty", 0, 4, nil},
		{"fewer items than parts", 2, 8, []chunk{{0, 1}, {1, 2}}},
		{"uneven", 5, 2, []chunk{{0, 3}, {3, 5}}},
		{"zero parts", 3, 0, []chunk{{0, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, split(tt.n, tt.parts))
		})
	}
}
