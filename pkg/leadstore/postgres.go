package leadstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
)

type PostgresConfig struct {
	DSN string `split_words:"true" required:"true"`
}

type leadRow struct {
	bun.BaseModel `bun:"table:captured_leads"`

	ID                    string         `bun:"id,pk"`
	ClientID              string         `bun:"client_id,notnull"`
	UserID                string         `bun:"user_id,notnull"`
	Domain                string         `bun:"domain,notnull"`
	Score                 float64        `bun:"score,notnull"`
	Source                string         `bun:"source"`
	ProductInterest       string         `bun:"product_interest"`
	ConversionProbability float64        `bun:"conversion_probability"`
	EstimatedValue        float64        `bun:"estimated_value"`
	ContactInfo           map[string]any `bun:"contact_info,type:jsonb"`
	CapturedAt            time.Time      `bun:"captured_at,notnull"`
}

// PostgresSink persists capture events into a captured_leads table.
type PostgresSink struct {
	db *bun.DB
}

var _ contractx.LeadSink = (*PostgresSink)(nil)

func NewPostgresSink(ctx context.Context, cfg PostgresConfig) (*PostgresSink, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.NewCreateTable().
		Model((*leadRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure captured_leads table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Capture(ctx context.Context, event contractx.LeadEvent) error {
	row := leadRow{
		ID:                    event.ID,
		ClientID:              event.ClientID,
		UserID:                event.UserID,
		Domain:                string(event.Domain),
		Score:                 event.Score,
		Source:                event.Source,
		ProductInterest:       event.ProductInterest,
		ConversionProbability: event.ConversionProbability,
		EstimatedValue:        event.EstimatedValue,
		ContactInfo:           event.ContactInfo,
		CapturedAt:            event.CapturedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert captured lead: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
