package orders

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^PHL-[0-9A-Z]+-[0-9A-F]{4}$`)

func TestIDGeneratorUniqueInTightLoop(t *testing.T) {
	gen := NewIDGenerator()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := gen.Next()
		require.Regexp(t, orderIDPattern, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 10000)
}

func TestIDGeneratorFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1760400000000)
	gen := &IDGenerator{now: func() time.Time { return frozen }}

	first := gen.Next()
	second := gen.Next()
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "PHL-MGPSPHC0"), first)
}
