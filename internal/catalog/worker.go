package catalog

import (
	"context"

	"github.com/riverqueue/river"
)

// RefreshArgs triggers a rebuild of every locale's cached category tree,
// keeping gig counts current between cache invalidations. Inserted on a
// periodic schedule.
type RefreshArgs struct{}

func (RefreshArgs) Kind() string { return "catalog_refresh" }

type RefreshWorker struct {
	river.WorkerDefaults[RefreshArgs]
	svc *Service
}

func NewRefreshWorker(svc *Service) *RefreshWorker {
	return &RefreshWorker{svc: svc}
}

func (w *RefreshWorker) Work(ctx context.Context, job *river.Job[RefreshArgs]) error {
	return w.svc.Refresh(ctx)
}
