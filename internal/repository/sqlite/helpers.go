package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/fretlog/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting repositories
// run standalone or inside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Nullable-column adapters. The stats columns are pointers on the model
// so the seen-status invariant (all nil) survives the round trip.

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// Tuning is stored as a JSON array of pitch names.

func marshalTuning(t models.Tuning) string {
	if len(t) == 0 {
		t = models.StandardTuning
	}
	b, err := json.Marshal(t)
	if err != nil {
		return `["E","A","D","G","B","E"]`
	}
	return string(b)
}

func unmarshalTuning(s string) models.Tuning {
	var t models.Tuning
	if err := json.Unmarshal([]byte(s), &t); err != nil || len(t) != 6 {
		return append(models.Tuning(nil), models.StandardTuning...)
	}
	return t
}
