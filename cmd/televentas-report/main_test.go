package main

import (
	"strings"
	"testing"
	"time"

	"televentas-insights/insights"
)

func TestClampDiscount(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, 5},
		{5, 5},
		{10, 10},
		{50, 50},
		{80, 50},
	}
	for _, tc := range cases {
		if got := clampDiscount(tc.in); got != tc.want {
			t.Fatalf("clampDiscount(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestPromoText(t *testing.T) {
	until := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	message, err := promoText("Arroz Premium", 80, until)
	if err != nil {
		t.Fatalf("promo text: %v", err)
	}
	if !strings.Contains(message, "50% DE DESCUENTO") {
		t.Fatalf("expected clamped discount in message, got %q", message)
	}
	if !strings.Contains(message, "Arroz Premium") {
		t.Fatalf("expected product in message, got %q", message)
	}
	if !strings.Contains(message, "15/04/2026") {
		t.Fatalf("expected expiry date in message, got %q", message)
	}

	if _, err := promoText("   ", 10, until); err == nil {
		t.Fatal("expected error for blank product")
	}
}

func TestSalesScriptBySegment(t *testing.T) {
	rec := &insights.Recommendation{
		Recommended: []insights.ProductVolume{{Product: "Aceite", Quantity: 7}},
	}

	active := salesScript(insights.CustomerProfile{Name: "Juan Perez", Segment: insights.SegmentActive}, rec)
	if !strings.Contains(active, "Juan") || !strings.Contains(active, "Aceite") || !strings.Contains(active, "5%") {
		t.Fatalf("unexpected active script: %q", active)
	}

	diminished := salesScript(insights.CustomerProfile{Name: "Ana Gomez", Segment: insights.SegmentDiminished}, rec)
	if !strings.Contains(diminished, "10%") {
		t.Fatalf("unexpected diminished script: %q", diminished)
	}

	inactive := salesScript(insights.CustomerProfile{Name: "Luis", Segment: insights.SegmentInactive}, rec)
	if !strings.Contains(inactive, "15%") {
		t.Fatalf("unexpected inactive script: %q", inactive)
	}

	fallback := salesScript(insights.CustomerProfile{Segment: insights.SegmentActive}, &insights.Recommendation{})
	if !strings.Contains(fallback, "nuestros productos") {
		t.Fatalf("expected generic product fallback, got %q", fallback)
	}
}

func TestContactCadence(t *testing.T) {
	if got := contactCadence(5); !strings.Contains(got, "2 weeks") {
		t.Fatalf("unexpected cadence for recency 5: %q", got)
	}
	if got := contactCadence(20); !strings.Contains(got, "weekly") {
		t.Fatalf("unexpected cadence for recency 20: %q", got)
	}
	if got := contactCadence(60); !strings.Contains(got, "week") {
		t.Fatalf("unexpected cadence for recency 60: %q", got)
	}
}
