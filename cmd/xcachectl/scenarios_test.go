package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Output(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"fifo", `After 2 writes: [a b]
After 3rd write (eviction expected): [b c]
Read b: <miss>
Read a: <miss>
Read d: [hello hii]
`},
		{"lru-ttl", `After 2 writes: [a b]
After 3rd write (eviction expected): [b c]
Read b: 6
After 5s, read a: <miss>
After 5s, read b: <miss>
Len: 0
`},
		{"lfu-batch", `After 4 writes and b read 3 times: [a b c d]
After 5th write (LFU eviction expected): [b c d e]
Read b: tomato
Read a: <miss>
Read e: mango
`},
		{"search", `Search strings containing 'a': map[y:banana]
Search values containing '1': map[x:12345]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := selectScenarios([]string{tt.name})
			require.NoError(t, err)
			require.Len(t, selected, 1)

			var out bytes.Buffer
			require.NoError(t, selected[0].run(context.Background(), &out))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSelectScenarios(t *testing.T) {
	all, err := selectScenarios(nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	picked, err := selectScenarios([]string{"SEARCH", "fifo"})
	require.NoError(t, err)
	assert.Equal(t, "search", picked[0].name)
	assert.Equal(t, "fifo", picked[1].name)

	_, err = selectScenarios([]string{"nope"})
	var usageErr *usageError
	assert.ErrorAs(t, err, &usageErr)
}
