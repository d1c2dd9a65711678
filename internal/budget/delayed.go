package budget

import (
	"sync"
	"time"
)

// delayed runs at most one pending action. Scheduling a new action or
// cancelling supersedes the pending one, even if its timer already fired
// and the callback is waiting to run.
type delayed struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// schedule arranges for fn to run after d unless superseded first.
func (d *delayed) schedule(after time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	gen := d.gen
	d.timer = time.AfterFunc(after, func() {
		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// cancel drops the pending action, if any.
func (d *delayed) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *delayed) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
