package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"televentas-insights/insights"
)

type dbConfig struct {
	URL    string
	Schema string
	Tag    string
}

func dbURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("TELEVENTAS_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	valid := regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	if !valid.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func seedDatabase(result *insights.Result, zones []insights.ZoneStats, cfg dbConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.crm_runs`, schema)).Scan(&count); err != nil {
		return "", err
	}
	if count > 0 {
		fmt.Println("Run data already present; skipping seed.")
		return "", nil
	}

	return storeRunTx(ctx, db, result, zones, schema, cfg.Tag)
}

func storeRunInDB(result *insights.Result, zones []insights.ZoneStats, cfg dbConfig) (string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return "", err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return "", err
	}

	if err := ensureSchema(ctx, db, schema); err != nil {
		return "", err
	}

	return storeRunTx(ctx, db, result, zones, schema, cfg.Tag)
}

func storeRunTx(ctx context.Context, db *sql.DB, result *insights.Result, zones []insights.ZoneStats, schema string, tag string) (string, error) {
	runID := uuid.New()

	var totalSpend float64
	for _, profile := range result.Profiles {
		totalSpend += profile.TotalSpend
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.crm_runs (
			id, as_of, customer_count, order_count, delivery_count,
			total_spend, run_tag
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7
		)`, schema),
		runID,
		result.AsOf,
		len(result.Profiles),
		len(result.Orders),
		len(result.Deliveries),
		totalSpend,
		nullString(tag),
	)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}

	insertProfileSQL := fmt.Sprintf(`
		INSERT INTO %s.crm_customer_profiles (
			id, run_id, customer_id, name, zone, business_type, attendant,
			last_order, dominant_period, total_spend, average_ticket,
			order_count, delivered_count, recency_days, delivery_effectiveness,
			segment, projected_annual_value
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,
			$8,$9,$10,$11,
			$12,$13,$14,$15,
			$16,$17
		)`, schema)

	for _, profile := range result.Profiles {
		_, err = tx.ExecContext(ctx, insertProfileSQL,
			uuid.New(),
			runID,
			profile.CustomerID,
			nullString(profile.Name),
			nullString(profile.Zone),
			nullString(profile.BusinessType),
			nullString(profile.Attendant),
			nullDate(profile.LastOrderDate),
			nullString(profile.DominantPeriod),
			profile.TotalSpend,
			profile.AverageTicket,
			profile.OrderCount,
			profile.DeliveredCount,
			profile.RecencyDays,
			profile.DeliveryEffectiveness,
			string(profile.Segment),
			profile.ProjectedAnnualValue,
		)
		if err != nil {
			_ = tx.Rollback()
			return "", err
		}
	}

	insertZoneSQL := fmt.Sprintf(`
		INSERT INTO %s.crm_zone_stats (
			id, run_id, zone, customers, avg_recency_days,
			avg_effectiveness_pct, avg_ticket, avg_projected_value, total_spend
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9
		)`, schema)

	for _, entry := range zones {
		_, err = tx.ExecContext(ctx, insertZoneSQL,
			uuid.New(),
			runID,
			entry.Zone,
			entry.Customers,
			entry.AvgRecencyDays,
			entry.AvgEffectivenessPct,
			entry.AvgTicket,
			entry.AvgProjectedValue,
			entry.TotalSpend,
		)
		if err != nil {
			_ = tx.Rollback()
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.crm_runs (
			id uuid PRIMARY KEY,
			as_of date NOT NULL,
			customer_count integer NOT NULL,
			order_count integer NOT NULL,
			delivery_count integer NOT NULL,
			total_spend numeric(14,2) NOT NULL,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.crm_customer_profiles (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.crm_runs(id) ON DELETE CASCADE,
			customer_id text NOT NULL,
			name text,
			zone text,
			business_type text,
			attendant text,
			last_order date,
			dominant_period text,
			total_spend numeric(14,2) NOT NULL,
			average_ticket numeric(14,2) NOT NULL,
			order_count integer NOT NULL,
			delivered_count integer NOT NULL,
			recency_days integer NOT NULL,
			delivery_effectiveness numeric(5,4) NOT NULL,
			segment text NOT NULL,
			projected_annual_value numeric(14,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.crm_zone_stats (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.crm_runs(id) ON DELETE CASCADE,
			zone text NOT NULL,
			customers integer NOT NULL,
			avg_recency_days numeric(8,2) NOT NULL,
			avg_effectiveness_pct numeric(8,2) NOT NULL,
			avg_ticket numeric(14,2) NOT NULL,
			avg_projected_value numeric(14,2) NOT NULL,
			total_spend numeric(14,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema))
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_crm_customer_profiles_run_idx ON %s.crm_customer_profiles (run_id)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_crm_customer_profiles_segment_idx ON %s.crm_customer_profiles (segment)`, schema, schema))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_crm_zone_stats_run_idx ON %s.crm_zone_stats (run_id)`, schema, schema))
	return err
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullDate(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}
