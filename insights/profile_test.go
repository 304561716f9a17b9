package insights

import (
	"testing"
	"time"
)

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func order(customerID string, product string, quantity int, unitPrice float64, date string) OrderRecord {
	orderDate := day(date)
	return OrderRecord{
		CustomerID: customerID,
		Product:    product,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		OrderDate:  orderDate,
		Period:     periodKey(orderDate),
		Amount:     float64(quantity) * unitPrice,
	}
}

func delivery(customerID string, date string) DeliveryRecord {
	deliveryDate := day(date)
	return DeliveryRecord{CustomerID: customerID, DeliveryDate: deliveryDate, Period: periodKey(deliveryDate)}
}

func customer(customerID string, businessType string, zone string) CustomerRecord {
	return CustomerRecord{CustomerID: customerID, Name: "Cliente " + customerID, BusinessType: businessType, Zone: zone}
}

func findProfile(t *testing.T, profiles []CustomerProfile, customerID string) CustomerProfile {
	t.Helper()
	for _, profile := range profiles {
		if profile.CustomerID == customerID {
			return profile
		}
	}
	t.Fatalf("profile %s not found", customerID)
	return CustomerProfile{}
}

func floatEqual(a float64, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.001
}

func TestProfileWithHistory(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders: []OrderRecord{
			order("C1", "Arroz", 1, 600, "2026-02-10"),
			order("C1", "Aceite", 1, 400, "2026-02-19"),
		},
		Deliveries: []DeliveryRecord{
			delivery("C1", "2026-02-11"),
			delivery("C1", "2026-02-20"),
		},
	}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C1")

	if profile.OrderCount != 2 {
		t.Fatalf("expected 2 orders, got %d", profile.OrderCount)
	}
	if !floatEqual(profile.TotalSpend, 1000) {
		t.Fatalf("expected total spend 1000, got %.2f", profile.TotalSpend)
	}
	if !floatEqual(profile.AverageTicket, 500) {
		t.Fatalf("expected average ticket 500, got %.2f", profile.AverageTicket)
	}
	if profile.RecencyDays != 10 {
		t.Fatalf("expected recency 10, got %d", profile.RecencyDays)
	}
	if !floatEqual(profile.DeliveryEffectiveness, 1.0) {
		t.Fatalf("expected effectiveness 1.0, got %.2f", profile.DeliveryEffectiveness)
	}
	if profile.Segment != SegmentActive {
		t.Fatalf("expected Active, got %s", profile.Segment)
	}
	if !floatEqual(profile.ProjectedAnnualValue, 18250.00) {
		t.Fatalf("expected projected value 18250.00, got %.2f", profile.ProjectedAnnualValue)
	}
}

func TestProfileWithoutHistory(t *testing.T) {
	tables := &Tables{Customers: []CustomerRecord{customer("C2", "Colmado", "Norte")}}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C2")

	if profile.OrderCount != 0 || profile.DeliveredCount != 0 {
		t.Fatalf("expected zero counts, got %d/%d", profile.OrderCount, profile.DeliveredCount)
	}
	if !floatEqual(profile.TotalSpend, 0) {
		t.Fatalf("expected zero spend, got %.2f", profile.TotalSpend)
	}
	if profile.RecencyDays != 0 {
		t.Fatalf("expected recency 0, got %d", profile.RecencyDays)
	}
	if !floatEqual(profile.DeliveryEffectiveness, 0) {
		t.Fatalf("expected effectiveness 0, got %.2f", profile.DeliveryEffectiveness)
	}
	if profile.Segment != SegmentActive {
		t.Fatalf("expected Active for no history, got %s", profile.Segment)
	}
	if !floatEqual(profile.ProjectedAnnualValue, 0) {
		t.Fatalf("expected projected value 0, got %.2f", profile.ProjectedAnnualValue)
	}
	if !profile.LastOrderDate.IsZero() {
		t.Fatalf("expected zero last order date, got %v", profile.LastOrderDate)
	}
}

func TestProfileRecencyClamp(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C3", "Colmado", "Norte")},
		Orders:    []OrderRecord{order("C3", "Arroz", 1, 100, "2025-01-01")},
	}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C3")

	if profile.RecencyDays != 365 {
		t.Fatalf("expected recency clamped to 365, got %d", profile.RecencyDays)
	}
	if profile.Segment != SegmentInactive {
		t.Fatalf("expected Inactive, got %s", profile.Segment)
	}
}

func TestProfileFutureOrderDate(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders:    []OrderRecord{order("C1", "Arroz", 1, 100, "2026-06-01")},
	}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C1")

	if profile.RecencyDays != 0 {
		t.Fatalf("expected recency 0 for future order, got %d", profile.RecencyDays)
	}
	if profile.Segment != SegmentActive {
		t.Fatalf("expected Active, got %s", profile.Segment)
	}
}

func TestProfileEffectivenessClamped(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders:    []OrderRecord{order("C1", "Arroz", 1, 100, "2026-02-20")},
		Deliveries: []DeliveryRecord{
			delivery("C1", "2026-02-21"),
			delivery("C1", "2026-02-22"),
			delivery("C1", "2026-02-23"),
		},
	}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C1")

	if profile.DeliveredCount != 3 {
		t.Fatalf("expected 3 deliveries, got %d", profile.DeliveredCount)
	}
	if !floatEqual(profile.DeliveryEffectiveness, 1.0) {
		t.Fatalf("expected effectiveness clamped to 1.0, got %.2f", profile.DeliveryEffectiveness)
	}
}

func TestProfileCardinality(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{
			customer("C1", "Colmado", "Norte"),
			customer("C2", "Colmado", "Sur"),
			customer("C3", "Cafeteria", "Norte"),
		},
		Orders: []OrderRecord{order("C2", "Arroz", 2, 50, "2026-02-01")},
	}

	result := BuildFromTables(tables, day("2026-03-01"))

	if len(result.Profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(result.Profiles))
	}
	for i, id := range []string{"C1", "C2", "C3"} {
		if result.Profiles[i].CustomerID != id {
			t.Fatalf("expected %s at position %d, got %s", id, i, result.Profiles[i].CustomerID)
		}
	}
}

func TestSegmentThresholds(t *testing.T) {
	cases := []struct {
		recency int
		want    Segment
	}{
		{0, SegmentActive},
		{29, SegmentActive},
		{30, SegmentDiminished},
		{89, SegmentDiminished},
		{90, SegmentInactive},
		{365, SegmentInactive},
	}
	for _, tc := range cases {
		if got := segmentFor(tc.recency); got != tc.want {
			t.Fatalf("recency %d: expected %s, got %s", tc.recency, tc.want, got)
		}
	}
}

func TestDominantPeriodTieBreak(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders: []OrderRecord{
			order("C1", "Arroz", 1, 10, "2026-02-05"),
			order("C1", "Arroz", 1, 10, "2026-01-05"),
			order("C1", "Arroz", 1, 10, "2026-02-15"),
			order("C1", "Arroz", 1, 10, "2026-01-15"),
		},
	}

	result := BuildFromTables(tables, day("2026-03-01"))
	profile := findProfile(t, result.Profiles, "C1")

	if profile.DominantPeriod != "2026-02" {
		t.Fatalf("expected tie broken by first-seen period 2026-02, got %s", profile.DominantPeriod)
	}
}

func TestTopBottomProducts(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders: []OrderRecord{
			order("C1", "Arroz", 5, 10, "2026-02-01"),
			order("C1", "Aceite", 5, 10, "2026-02-02"),
			order("C1", "Sal", 1, 10, "2026-02-03"),
			order("C1", "Azucar", 10, 10, "2026-02-04"),
		},
	}

	result := BuildFromTables(tables, day("2026-03-01"))

	wantTop := []string{"Azucar", "Arroz", "Aceite", "Sal"}
	if len(result.TopProducts) != len(wantTop) {
		t.Fatalf("expected %d top products, got %d", len(wantTop), len(result.TopProducts))
	}
	for i, want := range wantTop {
		if result.TopProducts[i].Product != want {
			t.Fatalf("top position %d: expected %s, got %s", i, want, result.TopProducts[i].Product)
		}
	}

	wantBottom := []string{"Sal", "Arroz", "Aceite", "Azucar"}
	for i, want := range wantBottom {
		if result.BottomProducts[i].Product != want {
			t.Fatalf("bottom position %d: expected %s, got %s", i, want, result.BottomProducts[i].Product)
		}
	}
}

func TestResultDateRanges(t *testing.T) {
	tables := &Tables{
		Customers: []CustomerRecord{customer("C1", "Colmado", "Norte")},
		Orders: []OrderRecord{
			order("C1", "Arroz", 1, 10, "2026-02-10"),
			order("C1", "Arroz", 1, 10, "2026-01-05"),
		},
		Deliveries: []DeliveryRecord{delivery("C1", "2026-02-11")},
	}

	result := BuildFromTables(tables, day("2026-03-01"))

	if !result.OrderDates.Min.Equal(day("2026-01-05")) || !result.OrderDates.Max.Equal(day("2026-02-10")) {
		t.Fatalf("unexpected order date range: %v - %v", result.OrderDates.Min, result.OrderDates.Max)
	}
	if !result.DeliveryDates.Min.Equal(day("2026-02-11")) || !result.DeliveryDates.Max.Equal(day("2026-02-11")) {
		t.Fatalf("unexpected delivery date range: %v - %v", result.DeliveryDates.Min, result.DeliveryDates.Max)
	}
}
