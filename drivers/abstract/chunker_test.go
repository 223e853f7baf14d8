package abstract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XAbade/tap-sherpaan/types"
)

func TestChunkerSplitsAndDrains(t *testing.T) {
	cases := []struct {
		records int
		size    int
		chunks  []int
	}{
		{records: 5, size: 2, chunks: []int{2, 2, 1}},
		{records: 6, size: 2, chunks: []int{2, 2, 2}},
		{records: 1, size: 200, chunks: []int{1}},
		{records: 0, size: 2, chunks: []int{}},
		{records: 3, size: 1, chunks: []int{1, 1, 1}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_records_size_%d", tc.records, tc.size), func(t *testing.T) {
			chunker := NewChunker(tc.size)
			sizes := []int{}
			emitted := []int{}

			for i := 0; i < tc.records; i++ {
				if chunk := chunker.Add(types.Record{"index": i}); chunk != nil {
					sizes = append(sizes, len(chunk))
					for _, record := range chunk {
						emitted = append(emitted, record["index"].(int))
					}
				}
			}
			if chunk := chunker.Drain(); chunk != nil {
				sizes = append(sizes, len(chunk))
				for _, record := range chunk {
					emitted = append(emitted, record["index"].(int))
				}
			}

			assert.Equal(t, tc.chunks, sizes)

			// every record comes out exactly once, in input order
			require.Len(t, emitted, tc.records)
			for i, index := range emitted {
				assert.Equal(t, i, index)
			}
		})
	}
}

func TestChunkerDrainAfterFullChunkIsEmpty(t *testing.T) {
	chunker := NewChunker(2)
	assert.Nil(t, chunker.Add(types.Record{"index": 0}))
	assert.NotNil(t, chunker.Add(types.Record{"index": 1}))
	assert.Nil(t, chunker.Drain())
}
