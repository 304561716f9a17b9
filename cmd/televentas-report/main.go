package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"televentas-insights/insights"
)

const defaultTrendSince = "2024-01-01"

// Report is the JSON export shape: everything the run produced for the
// selected filters.
type Report struct {
	AsOf           string                     `json:"as_of"`
	Source         string                     `json:"source"`
	Profiles       []insights.CustomerProfile `json:"profiles"`
	TopProducts    []insights.ProductVolume   `json:"top_products"`
	BottomProducts []insights.ProductVolume   `json:"bottom_products"`
	Zones          []insights.ZoneStats       `json:"zones"`
	Trend          []insights.TrendPoint      `json:"trend"`
	Recommendation *insights.Recommendation   `json:"recommendation,omitempty"`
}

func main() {
	_ = godotenv.Load()

	sourcePath := flag.String("source", "", "Workbook path or URL with pedido/entregado/clientes sheets")
	asOf := flag.String("as-of", "", "Reference date for recency math (YYYY-MM-DD)")
	zone := flag.String("zone", "", "Filter by sales zone")
	segment := flag.String("segment", "", "Filter by segment (Active, Diminished, Inactive)")
	period := flag.String("period", "", "Filter by dominant period (YYYY-MM)")
	customerID := flag.String("customer", "", "Customer id for the detail and recommendation view")
	trendSince := flag.String("trend-since", defaultTrendSince, "Look-back boundary for the effectiveness trend (YYYY-MM-DD)")
	cacheTTL := flag.Duration("cache-ttl", 15*time.Minute, "Memoization TTL per source handle")
	jsonOut := flag.String("json", "", "Optional JSON output path")
	csvOut := flag.String("csv", "", "Optional CSV output path for the filtered profiles")
	dbEnabled := flag.Bool("db", false, "Store the run in Postgres (requires TELEVENTAS_DB_URL or DATABASE_URL)")
	dbSchema := flag.String("db-schema", "televentas", "Postgres schema for run tables")
	dbTag := flag.String("db-tag", "", "Optional label for this run")
	initDB := flag.Bool("init-db", false, "Initialize database schema and seed it if empty")
	promoProduct := flag.String("promo-product", "", "Product for the promotional message")
	discount := flag.Int("discount", 10, "Promo discount percentage (clamped to 5-50)")
	promoUntil := flag.String("promo-until", "", "Promo expiry date (YYYY-MM-DD)")
	promoOut := flag.String("promo-out", "", "Optional text file for the promotional message")
	flag.Parse()

	if *sourcePath == "" {
		exitWithError(errors.New("--source is required"))
	}

	var asOfDate time.Time
	if *asOf != "" {
		parsed, err := parseDay(*asOf)
		if err != nil {
			exitWithError(fmt.Errorf("invalid --as-of date: %w", err))
		}
		asOfDate = parsed
	}

	since, err := parseDay(*trendSince)
	if err != nil {
		exitWithError(fmt.Errorf("invalid --trend-since date: %w", err))
	}

	cache := insights.NewCache(*cacheTTL, func(source string) (*insights.Result, error) {
		return insights.Build(source, insights.Options{AsOf: asOfDate})
	})
	result, err := cache.Get(*sourcePath)
	if err != nil {
		exitWithError(err)
	}

	filter := insights.Filter{
		Zone:    *zone,
		Segment: insights.Segment(*segment),
		Period:  *period,
	}
	filtered := filter.Apply(result.Profiles)
	zones := insights.RollupByZone(filtered)
	trend := insights.EffectivenessTrend(filtered, since)

	printReport(result, filtered, zones, trend, *sourcePath)

	var recommendation *insights.Recommendation
	if *customerID != "" {
		rec, err := insights.Recommend(*customerID, filtered, result.Orders)
		if errors.Is(err, insights.ErrCustomerNotFound) {
			fmt.Printf("\nCustomer %s not found in the filtered profile set.\n", *customerID)
		} else if err != nil {
			exitWithError(err)
		} else {
			recommendation = rec
			printCustomerDetail(findProfile(filtered, *customerID), rec)
		}
	}

	if *jsonOut != "" {
		report := Report{
			AsOf:           result.AsOf.Format("2006-01-02"),
			Source:         *sourcePath,
			Profiles:       filtered,
			TopProducts:    result.TopProducts,
			BottomProducts: result.BottomProducts,
			Zones:          zones,
			Trend:          trend,
			Recommendation: recommendation,
		}
		if err := writeJSON(report, *jsonOut); err != nil {
			exitWithError(err)
		}
		fmt.Printf("\nJSON report saved to %s\n", *jsonOut)
	}

	if *csvOut != "" {
		if err := writeProfilesCSV(filtered, *csvOut); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Profile CSV saved to %s\n", *csvOut)
	}

	if *promoProduct != "" {
		until := result.AsOf.AddDate(0, 0, 7)
		if *promoUntil != "" {
			parsed, err := parseDay(*promoUntil)
			if err != nil {
				exitWithError(fmt.Errorf("invalid --promo-until date: %w", err))
			}
			until = parsed
		}
		message, err := promoText(*promoProduct, *discount, until)
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("\nPromotional message")
		fmt.Println(strings.Repeat("-", 38))
		fmt.Println(message)
		if *promoOut != "" {
			if err := os.WriteFile(*promoOut, []byte(message), 0644); err != nil {
				exitWithError(err)
			}
			fmt.Printf("Promotional message saved to %s\n", *promoOut)
		}
	}

	if *dbEnabled || *initDB {
		dbURL := dbURLFromEnv()
		if dbURL == "" {
			exitWithError(errors.New("database URL missing; set TELEVENTAS_DB_URL or DATABASE_URL"))
		}
		cfg := dbConfig{
			URL:    dbURL,
			Schema: *dbSchema,
			Tag:    *dbTag,
		}
		seeded := false
		if *initDB {
			runID, err := seedDatabase(result, zones, cfg)
			if err != nil {
				exitWithError(err)
			}
			if runID != "" {
				seeded = true
				fmt.Printf("\nSeeded Postgres with initial run (run_id=%s)\n", runID)
			}
		}
		if *dbEnabled {
			if seeded {
				fmt.Println("Skipped duplicate insert; current run already used for seed.")
			} else {
				runID, err := storeRunInDB(result, zones, cfg)
				if err != nil {
					exitWithError(err)
				}
				fmt.Printf("\nStored run in Postgres (run_id=%s)\n", runID)
			}
		}
	}
}

func printReport(result *insights.Result, filtered []insights.CustomerProfile, zones []insights.ZoneStats, trend []insights.TrendPoint, source string) {
	fmt.Println("Televentas Customer Insights")
	fmt.Println(strings.Repeat("=", 38))
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("As of: %s\n", result.AsOf.Format("2006-01-02"))
	fmt.Printf("Customers: %d of %d after filters\n", len(filtered), len(result.Profiles))

	if len(filtered) == 0 {
		fmt.Println("\nNo customers match the selected filters.")
		printDataPeriod(result)
		return
	}

	var spend, recency, projected float64
	for _, profile := range filtered {
		spend += profile.TotalSpend
		recency += float64(profile.RecencyDays)
		projected += profile.ProjectedAnnualValue
	}
	count := float64(len(filtered))
	fmt.Printf("Avg spend/recency/projected value: %.2f / %.0f days / %.2f\n", spend/count, recency/count, projected/count)

	active, diminished, inactive := countSegments(filtered)
	fmt.Printf("Active: %d | Diminished: %d | Inactive: %d\n", active, diminished, inactive)

	fmt.Println("\nTop products")
	fmt.Println(strings.Repeat("-", 38))
	printProducts(result.TopProducts)
	fmt.Println("\nBottom products")
	fmt.Println(strings.Repeat("-", 38))
	printProducts(result.BottomProducts)

	if len(zones) > 0 {
		fmt.Println("\nZone summary")
		fmt.Println(strings.Repeat("-", 38))
		for _, entry := range zones {
			fmt.Printf("%s | customers %d | recency %.0f days | effectiveness %.2f%% | ticket %.2f | projected %.2f | spend %.2f\n",
				entry.Zone,
				entry.Customers,
				entry.AvgRecencyDays,
				entry.AvgEffectivenessPct,
				entry.AvgTicket,
				entry.AvgProjectedValue,
				entry.TotalSpend,
			)
		}
	}

	if len(trend) > 0 {
		fmt.Println("\nMonthly delivery effectiveness")
		fmt.Println(strings.Repeat("-", 38))
		for _, point := range trend {
			fmt.Printf("%s: %.2f%%\n", point.Month, point.EffectivenessPct)
		}
	}

	printDataPeriod(result)
}

func printProducts(products []insights.ProductVolume) {
	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}
	for _, product := range products {
		fmt.Printf("%s: %d\n", product.Product, product.Quantity)
	}
}

func printDataPeriod(result *insights.Result) {
	fmt.Println("\nData period")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Printf("Orders: %s - %s\n", formatDay(result.OrderDates.Min), formatDay(result.OrderDates.Max))
	fmt.Printf("Deliveries: %s - %s\n", formatDay(result.DeliveryDates.Min), formatDay(result.DeliveryDates.Max))
}

func printCustomerDetail(profile insights.CustomerProfile, rec *insights.Recommendation) {
	fmt.Println("\nCustomer detail")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Printf("%s | %s | %s | %s\n", profile.CustomerID, profile.Name, profile.BusinessType, profile.Zone)
	fmt.Printf("Phone: %s | Address: %s | Attendant: %s\n", profile.Phone, profile.Address, profile.Attendant)
	fmt.Printf("Ticket %.2f | recency %d days | effectiveness %.0f%% | segment %s | projected %.2f\n",
		profile.AverageTicket,
		profile.RecencyDays,
		profile.DeliveryEffectiveness*100,
		profile.Segment,
		profile.ProjectedAnnualValue,
	)

	fmt.Println("\nFrequently bought")
	printProducts(rec.FrequentlyBought)
	fmt.Println("\nRecommended for this business")
	printProducts(rec.Recommended)
	fmt.Println("\nSales opportunities")
	if len(rec.Opportunities) == 0 {
		fmt.Println("No unpurchased products found.")
	} else {
		for _, product := range rec.Opportunities {
			fmt.Println(product)
		}
	}

	fmt.Println("\nSuggested approach")
	fmt.Println(salesScript(profile, rec))
	fmt.Printf("Contact cadence: %s\n", contactCadence(profile.RecencyDays))
}

func countSegments(profiles []insights.CustomerProfile) (int, int, int) {
	active, diminished, inactive := 0, 0, 0
	for _, profile := range profiles {
		switch profile.Segment {
		case insights.SegmentActive:
			active++
		case insights.SegmentDiminished:
			diminished++
		case insights.SegmentInactive:
			inactive++
		}
	}
	return active, diminished, inactive
}

func findProfile(profiles []insights.CustomerProfile, customerID string) insights.CustomerProfile {
	for _, profile := range profiles {
		if profile.CustomerID == customerID {
			return profile
		}
	}
	return insights.CustomerProfile{CustomerID: customerID}
}

func writeJSON(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeProfilesCSV(profiles []insights.CustomerProfile, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"customer_id",
		"name",
		"zone",
		"business_type",
		"attendant",
		"last_order",
		"dominant_period",
		"total_spend",
		"average_ticket",
		"order_count",
		"delivered_count",
		"recency_days",
		"delivery_effectiveness",
		"segment",
		"projected_annual_value",
	}); err != nil {
		return err
	}

	for _, profile := range profiles {
		record := []string{
			profile.CustomerID,
			profile.Name,
			profile.Zone,
			profile.BusinessType,
			profile.Attendant,
			formatDate(profile.LastOrderDate),
			profile.DominantPeriod,
			fmt.Sprintf("%.2f", profile.TotalSpend),
			fmt.Sprintf("%.2f", profile.AverageTicket),
			fmt.Sprintf("%d", profile.OrderCount),
			fmt.Sprintf("%d", profile.DeliveredCount),
			fmt.Sprintf("%d", profile.RecencyDays),
			fmt.Sprintf("%.4f", profile.DeliveryEffectiveness),
			string(profile.Segment),
			fmt.Sprintf("%.2f", profile.ProjectedAnnualValue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format("2006-01-02")
}

// formatDay renders footer dates in the dd/mm/yyyy style the sales team reads.
func formatDay(value time.Time) string {
	if value.IsZero() {
		return "N/A"
	}
	return value.Format("02/01/2006")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
