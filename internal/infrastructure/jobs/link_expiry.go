package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/pkg/logger"
)

// LinkExpirySweep periodically materializes the expired status for links
// whose expiry has passed. Payability is still derived at read time; the
// sweep only keeps listings and dashboards consistent.
type LinkExpirySweep struct {
	repo     domainRepos.PaymentLinkRepository
	interval time.Duration
	batch    int
	stop     chan struct{}
}

func NewLinkExpirySweep(repo domainRepos.PaymentLinkRepository) *LinkExpirySweep {
	return &LinkExpirySweep{
		repo:     repo,
		interval: time.Minute,
		batch:    100,
		stop:     make(chan struct{}),
	}
}

func (j *LinkExpirySweep) Start(ctx context.Context) {
	logger.Info(ctx, "starting link expiry sweep", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "link expiry sweep stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "link expiry sweep stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *LinkExpirySweep) Stop() {
	close(j.stop)
}

func (j *LinkExpirySweep) sweep(ctx context.Context) {
	expired, err := j.repo.ExpireLinks(ctx, j.batch)
	if err != nil {
		logger.Error(ctx, "link expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		logger.Info(ctx, "expired payment links", zap.Int64("count", expired))
	}
}
