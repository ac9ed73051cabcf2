// Janitor wires up the cron job that periodically sweeps expired snapshots
// out of a MemoryStore. Redis-backed deployments do not need it — key TTLs
// expire server-side.
package snapshot

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Janitor wraps robfig/cron around MemoryStore.Sweep.
type Janitor struct {
	cron  *cron.Cron
	store *MemoryStore
	spec  string // cron spec, e.g. "@every 5m"
}

// NewJanitor creates a Janitor that fires every intervalMinutes minutes.
// Intervals below one minute are clamped: "@every 0m" would have cron
// sweeping every second.
func NewJanitor(store *MemoryStore, intervalMinutes int) *Janitor {
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return &Janitor{
		cron:  cron.New(cron.WithLogger(cron.DefaultLogger)),
		store: store,
		spec:  fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the sweep job and starts the scheduler.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if removed := j.store.Sweep(); removed > 0 {
			log.Printf("[janitor] Swept %d expired snapshot(s)", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	j.cron.Start()
	log.Printf("[janitor] Cron started — spec: %s", j.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (j *Janitor) Stop() {
	j.cron.Stop()
	log.Println("[janitor] Cron stopped")
}
