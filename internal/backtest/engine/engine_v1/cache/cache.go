package cache

import (
	"os"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// FeeScheduleCache loads a fee schedule on first use and serves the same
// read-only instance afterwards. A nil path means the embedded default schedule.
type FeeScheduleCache struct {
	path     optional.Option[string]
	once     sync.Once
	schedule *commission_fee.FeeSchedule
	err      error
	loads    int
}

func NewFeeScheduleCache(path optional.Option[string]) *FeeScheduleCache {
	return &FeeScheduleCache{
		path: path,
	}
}

// Get returns the cached schedule, loading it if this is the first call.
// A load failure is cached as well.
func (c *FeeScheduleCache) Get() (*commission_fee.FeeSchedule, error) {
	c.once.Do(func() {
		c.loads++
		c.schedule, c.err = c.load()
	})

	return c.schedule, c.err
}

// Path returns the schedule path, or None for the embedded default.
func (c *FeeScheduleCache) Path() optional.Option[string] {
	return c.path
}

func (c *FeeScheduleCache) load() (*commission_fee.FeeSchedule, error) {
	if c.path.IsNone() || c.path.Unwrap() == "" {
		return commission_fee.DefaultFeeSchedule()
	}

	path := c.path.Unwrap()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFeeScheduleNotFound, err, "failed to read fee schedule %s", path)
	}

	return commission_fee.ParseFeeSchedule(data)
}
