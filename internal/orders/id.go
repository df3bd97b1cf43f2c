package orders

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDPrefix starts every customer-facing order id.
const IDPrefix = "PHL-"

// IDGenerator produces ids shaped PHL-<millis><seq>-<hex4>, base36 and
// upper case. The sequence makes ids unique within a process even when the
// clock does not move between calls.
type IDGenerator struct {
	now func() time.Time
	seq atomic.Uint64
}

// NewIDGenerator returns a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh order id.
func (g *IDGenerator) Next() string {
	now := g.now
	if now == nil {
		now = time.Now
	}
	millis := strconv.FormatInt(now().UnixMilli(), 36)
	seq := strconv.FormatUint(g.seq.Add(1), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return strings.ToUpper(IDPrefix + millis + seq + "-" + suffix)
}
