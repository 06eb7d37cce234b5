package jobs

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	domainRepos "link-pago.backend/internal/domain/repositories"
	"link-pago.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}

type expiryRepoStub struct {
	domainRepos.PaymentLinkRepository

	calls   []int
	expired int64
	err     error
}

func (s *expiryRepoStub) ExpireLinks(ctx context.Context, limit int) (int64, error) {
	s.calls = append(s.calls, limit)
	return s.expired, s.err
}

func TestSweep_CallsRepositoryWithBatchLimit(t *testing.T) {
	repo := &expiryRepoStub{expired: 2}
	job := NewLinkExpirySweep(repo)

	job.sweep(context.Background())
	require.Equal(t, []int{100}, repo.calls)
}

func TestSweep_RepositoryErrorIsSwallowed(t *testing.T) {
	repo := &expiryRepoStub{err: errors.New("db down")}
	job := NewLinkExpirySweep(repo)

	require.NotPanics(t, func() { job.sweep(context.Background()) })
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	repo := &expiryRepoStub{}
	job := NewLinkExpirySweep(repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	<-done
}

func TestStart_StopsOnStop(t *testing.T) {
	repo := &expiryRepoStub{}
	job := NewLinkExpirySweep(repo)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	job.Stop()
	<-done
}

var _ domainRepos.PaymentLinkRepository = &expiryRepoStub{}
