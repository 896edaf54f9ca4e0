package jobs

import (
	"context"

	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

// Refresher reloads distributor product details for the whole inventory.
type Refresher interface {
	RefreshAllDetails(ctx context.Context) (int, error)
}

// RefreshDetailsJob keeps stored product details in step with the
// distributor catalogue.
type RefreshDetailsJob struct {
	refresher Refresher
	logg      *logger.Logger
}

func NewRefreshDetailsJob(refresher Refresher, logg *logger.Logger) *RefreshDetailsJob {
	return &RefreshDetailsJob{refresher: refresher, logg: logg}
}

func (j *RefreshDetailsJob) Name() string { return "refresh-details" }

func (j *RefreshDetailsJob) Run(ctx context.Context) error {
	n, err := j.refresher.RefreshAllDetails(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "refreshed", n), "product details refreshed")
	return nil
}
