package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog-server/internal/logger"
)

// KVGCJob periodically compacts the badger value log.
type KVGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *KVGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideKVGCJob starts the value-log garbage collector.
func ProvideKVGCJob(i do.Injector) (*KVGCJob, error) {
	kvHandle := do.MustInvoke[*KVHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(kvGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := kvHandle.RunGC(); err != nil {
					log.Warn("KV garbage collection failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("KV garbage collection job started", "interval", kvGCInterval)

	return &KVGCJob{cancel: cancel}, nil
}
