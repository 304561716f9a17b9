// Package insights turns raw transactional records (orders, deliveries,
// customer master data) into per-customer analytical profiles, per-zone
// rollups and cohort-based product recommendations. The pipeline is a pure
// in-memory transform: every run recomputes all derived structures from the
// source tables against a single reference instant.
package insights

import (
	"net/http"
	"time"
)

const topProductCount = 5

// Options tunes a pipeline run.
type Options struct {
	// AsOf is the reference instant shared by all recency math in one run.
	// Zero means time.Now().
	AsOf time.Time
	// Client overrides the HTTP client used for URL sources.
	Client *http.Client
}

// Build fetches the source workbook and derives the full customer profile
// set. It is the single load entry point; a failed fetch or validation yields
// a DataSourceError and no partial result.
func Build(source string, opts Options) (*Result, error) {
	tables, err := LoadTables(source, opts.Client)
	if err != nil {
		return nil, err
	}
	return BuildFromTables(tables, opts.AsOf), nil
}

// BuildFromTables runs the in-memory half of the pipeline over already
// validated tables.
func BuildFromTables(tables *Tables, asOf time.Time) *Result {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	asOf = dateOnly(asOf)

	volumes := productVolumes(tables.Orders)
	result := &Result{
		AsOf:           asOf,
		Profiles:       buildProfiles(tables, asOf),
		TopProducts:    topProducts(volumes, topProductCount),
		BottomProducts: bottomProducts(volumes, topProductCount),
		Orders:         tables.Orders,
		Deliveries:     tables.Deliveries,
	}
	for _, order := range tables.Orders {
		result.OrderDates = result.OrderDates.extend(order.OrderDate)
	}
	for _, delivery := range tables.Deliveries {
		result.DeliveryDates = result.DeliveryDates.extend(delivery.DeliveryDate)
	}
	return result
}
