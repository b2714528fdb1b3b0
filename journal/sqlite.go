package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradejournal/pkg/id"
	"github.com/shopspring/decimal"
)

// Compile-time check to ensure SQLite implements Store
var _ Store = (*SQLite)(nil)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

const tradeColumns = `trade_id, symbol, direction, quantity, open_price, open_time, close_price, close_time, stop_loss, notes, tags`

// Add validates and stores t, assigning an ID when it has none.
func (j *SQLite) Add(ctx context.Context, t Trade) (Trade, error) {
	t.normalize()
	if err := t.Validate(); err != nil {
		return Trade{}, fmt.Errorf("invalid trade: %w", err)
	}
	if t.ID == "" {
		t.ID = id.New()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Direction), t.Quantity.String(), t.OpenPrice.String(),
		t.OpenTime, nullDecimal(t.ClosePrice), nullTime(t), nullDecimal(t.StopLoss),
		t.Notes, joinTags(t.Tags),
	)
	if err != nil {
		return Trade{}, fmt.Errorf("insert trade: %w", err)
	}
	return t, nil
}

// Get returns a single trade by ID.
func (j *SQLite) Get(ctx context.Context, tradeID string) (Trade, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return Trade{}, err
	}
	return t, nil
}

// Update replaces every field of the stored trade with t's.
func (j *SQLite) Update(ctx context.Context, t Trade) error {
	t.normalize()
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid trade: %w", err)
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE trades SET
			symbol = ?, direction = ?, quantity = ?, open_price = ?, open_time = ?,
			close_price = ?, close_time = ?, stop_loss = ?, notes = ?, tags = ?
		WHERE trade_id = ?`,
		t.Symbol, string(t.Direction), t.Quantity.String(), t.OpenPrice.String(), t.OpenTime,
		nullDecimal(t.ClosePrice), nullTime(t), nullDecimal(t.StopLoss), t.Notes, joinTags(t.Tags),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update trade: %w", err)
	}
	return expectOne(res, t.ID)
}

func (j *SQLite) Delete(ctx context.Context, tradeID string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE trade_id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	return expectOne(res, tradeID)
}

// List returns the trades matching f ordered by open time, oldest first.
func (j *SQLite) List(ctx context.Context, f Filter) ([]Trade, error) {
	where, args := f.where()
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		`+where+`
		ORDER BY open_time ASC, trade_id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (Trade, error) {
	var (
		t         Trade
		direction string
		closeTime sql.NullTime
		tags      string
	)
	err := s.Scan(
		&t.ID,
		&t.Symbol,
		&direction,
		&t.Quantity,
		&t.OpenPrice,
		&t.OpenTime,
		&t.ClosePrice,
		&closeTime,
		&t.StopLoss,
		&t.Notes,
		&tags,
	)
	if err != nil {
		return Trade{}, err
	}
	t.Direction = Direction(direction)
	t.OpenTime = t.OpenTime.UTC()
	if closeTime.Valid {
		t.CloseTime = closeTime.Time.UTC()
	}
	t.Tags = splitTags(tags)
	return t, nil
}

func expectOne(res sql.Result, tradeID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return nil
}

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func nullTime(t Trade) any {
	if t.CloseTime.IsZero() {
		return nil
	}
	return t.CloseTime
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func splitTags(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
