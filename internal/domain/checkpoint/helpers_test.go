package checkpoint_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
	"github.com/ganot/punchlist/internal/domain/checkpoint"
	"github.com/stretchr/testify/require"
)

const testDataset = `
version: "test"
categories:
  - id: floor
    title: Floor
    draft:
      - id: f1
        title: Screed level
      - id: f2
        title: Screed cracks
    finish:
      - id: f3
        title: Board gaps
  - id: walls
    title: Walls
    draft:
      - id: w1
        title: Plaster verticality
  - id: empty
    title: Empty
`

var errDiskFull = errors.New("disk full")

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(testDataset))
	require.NoError(t, err)
	return cat
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestLedger(t *testing.T, opts ...checkpoint.Option) (*checkpoint.Ledger, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]checkpoint.Option{checkpoint.WithClock(clock.Now)}, opts...)
	return checkpoint.NewLedger(nil, opts...), clock
}
