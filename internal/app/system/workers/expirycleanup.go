// internal/app/system/workers/expirycleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	"go.uber.org/zap"
)

// ExpiryCleanup is a background worker that purges expired invites and
// dead confirmation tokens. It is storage hygiene only: expiry is always
// re-derived at use time, so a missed sweep never admits anyone.
type ExpiryCleanup struct {
	invites       invitestore.Store
	confirmations confirmstore.Store
	log           *zap.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewExpiryCleanup creates a new cleanup worker.
//
// Parameters:
//   - inv: the invite store
//   - conf: the confirmation token store
//   - logger: zap logger for logging
//   - interval: how often to run the sweep (e.g., 10 minutes)
func NewExpiryCleanup(inv invitestore.Store, conf confirmstore.Store, logger *zap.Logger, interval time.Duration) *ExpiryCleanup {
	return &ExpiryCleanup{
		invites:       inv,
		confirmations: conf,
		log:           logger,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ExpiryCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("expiry cleanup worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ExpiryCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("expiry cleanup worker stopped")
}

func (w *ExpiryCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpiryCleanup) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := w.now()

	invites, err := w.invites.DeleteExpired(ctx, now)
	if err != nil {
		w.log.Error("failed to purge expired invites", zap.Error(err))
	} else if invites > 0 {
		w.log.Info("purged expired invites", zap.Int64("count", invites))
	}

	tokens, err := w.confirmations.DeleteDead(ctx, now)
	if err != nil {
		w.log.Error("failed to purge dead confirmation tokens", zap.Error(err))
	} else if tokens > 0 {
		w.log.Info("purged dead confirmation tokens", zap.Int64("count", tokens))
	}
}
