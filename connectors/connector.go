// Package connectors defines external market data sources.
package connectors

import (
	"context"
	"time"

	"github.com/kilianp07/h2cf/core/model"
)

// PriceSource fetches an hourly price series covering [start, end).
type PriceSource interface {
	Prices(ctx context.Context, start, end time.Time) (*model.PriceSeries, error)
}
