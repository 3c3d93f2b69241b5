package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the auction-domain instruments.
type Metrics struct {
	BidsPlaced  metric.Int64Counter
	LotsSold    metric.Int64Counter
	SalePrice   metric.Int64Histogram
	LiveViewers metric.Int64UpDownCounter
}

// NewMetrics creates the auction instruments on the given meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter("github.com/sreeharimv/auction-platform/internal/telemetry")

	bids, err := meter.Int64Counter("auction.bids_placed",
		metric.WithDescription("Number of accepted bids"))
	if err != nil {
		return nil, fmt.Errorf("creating bids counter: %w", err)
	}
	sold, err := meter.Int64Counter("auction.lots_sold",
		metric.WithDescription("Number of finalized sales"))
	if err != nil {
		return nil, fmt.Errorf("creating sold counter: %w", err)
	}
	price, err := meter.Int64Histogram("auction.sale_price",
		metric.WithDescription("Final sale prices in minor currency units"))
	if err != nil {
		return nil, fmt.Errorf("creating price histogram: %w", err)
	}
	viewers, err := meter.Int64UpDownCounter("auction.live_viewers",
		metric.WithDescription("Currently connected live viewers"))
	if err != nil {
		return nil, fmt.Errorf("creating viewers counter: %w", err)
	}

	return &Metrics{
		BidsPlaced:  bids,
		LotsSold:    sold,
		SalePrice:   price,
		LiveViewers: viewers,
	}, nil
}
