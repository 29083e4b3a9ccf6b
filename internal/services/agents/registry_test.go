package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllReturnsEveryVariantOnce(t *testing.T) {
	all := All()
	require.Len(t, all, 6)

	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.Name()
	}
	assert.Equal(t, []string{"technical", "fundamental", "sentiment", "macro", "risk", "sector"}, names)
}
