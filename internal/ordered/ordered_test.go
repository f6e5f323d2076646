package ordered

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	var keys []string
	var sum int
	Range(m, func(k string, v int) {
		keys = append(keys, k)
		sum += v
	})
	require.Equal(t, []string{"a", "b", "c"}, keys)
	require.Equal(t, 6, sum)
}

func TestKeysEmpty(t *testing.T) {
	require.Empty(t, Keys(map[int]bool{}))
}
