package insights

import (
	"math"
	"sort"
	"time"
)

// ZoneStats aggregates the profile table for one sales zone.
type ZoneStats struct {
	Zone                string  `json:"zone"`
	Customers           int     `json:"customers"`
	AvgRecencyDays      float64 `json:"avg_recency_days"`
	AvgEffectivenessPct float64 `json:"avg_effectiveness_pct"`
	AvgTicket           float64 `json:"avg_ticket"`
	AvgProjectedValue   float64 `json:"avg_projected_value"`
	TotalSpend          float64 `json:"total_spend"`
}

// TrendPoint is one month of the delivery-effectiveness series.
type TrendPoint struct {
	Month            string  `json:"month"`
	EffectivenessPct float64 `json:"effectiveness_pct"`
}

// RollupByZone groups profiles by zone, ordered by zone name. Every input
// profile lands in exactly one zone bucket.
func RollupByZone(profiles []CustomerProfile) []ZoneStats {
	buckets := map[string][]CustomerProfile{}
	for _, profile := range profiles {
		buckets[profile.Zone] = append(buckets[profile.Zone], profile)
	}
	zones := make([]string, 0, len(buckets))
	for zone := range buckets {
		zones = append(zones, zone)
	}
	sort.Strings(zones)

	stats := make([]ZoneStats, 0, len(zones))
	for _, zone := range zones {
		entries := buckets[zone]
		entry := ZoneStats{Zone: zone, Customers: len(entries)}
		var recency, effectiveness, ticket, projected float64
		for _, profile := range entries {
			recency += float64(profile.RecencyDays)
			effectiveness += profile.DeliveryEffectiveness
			ticket += profile.AverageTicket
			projected += profile.ProjectedAnnualValue
			entry.TotalSpend += profile.TotalSpend
		}
		count := float64(len(entries))
		entry.AvgRecencyDays = math.Round(recency / count)
		entry.AvgEffectivenessPct = round2(effectiveness / count * 100)
		entry.AvgTicket = round2(ticket / count)
		entry.AvgProjectedValue = round2(projected / count)
		entry.TotalSpend = round2(entry.TotalSpend)
		stats = append(stats, entry)
	}
	return stats
}

// EffectivenessTrend averages delivery effectiveness per month of last order,
// restricted to profiles whose last order falls on or after since. Points are
// percentage-scaled and chronological.
func EffectivenessTrend(profiles []CustomerProfile, since time.Time) []TrendPoint {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, profile := range profiles {
		if profile.LastOrderDate.IsZero() || profile.LastOrderDate.Before(since) {
			continue
		}
		month := periodKey(profile.LastOrderDate)
		sums[month] += profile.DeliveryEffectiveness
		counts[month]++
	}
	months := make([]string, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for _, month := range months {
		points = append(points, TrendPoint{
			Month:            month,
			EffectivenessPct: round2(sums[month] / float64(counts[month]) * 100),
		})
	}
	return points
}
