package sequence

import (
	"context"
	"errors"
	"time"

	"github.com/bizzy604/HIS-sub000/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scopes for per-day document sequences.
const (
	ScopeMRN  = "mrn"
	ScopeBill = "bill"
)

var ErrExhausted = errors.New("sequence_exhausted")

// Allocator hands out per-day document sequence numbers backed by a counter
// row per (scope, day). The increment runs inside the caller's transaction,
// so concurrent allocations serialize on the row lock and a number is only
// consumed when the enclosing transaction commits.
type Allocator struct {
	log *zap.Logger
}

func NewAllocator(log *zap.Logger) *Allocator {
	return &Allocator{log: log.Named("sequence.allocator")}
}

// Next allocates the next sequence number for scope on day. Must be called
// inside a transaction together with the insert that consumes the number.
func (a *Allocator) Next(ctx context.Context, tx *gorm.DB, scope string, day DayRange) (int64, error) {
	now := time.Now().UTC()

	res := tx.WithContext(ctx).Exec(
		`UPDATE document_sequences SET last_value = last_value + 1, updated_at = ? WHERE scope = ? AND day = ?`,
		now, scope, day.Key(),
	)
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO document_sequences (scope, day, last_value, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
			scope, day.Key(), now, now,
		).Error
		if err == nil {
			return 1, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return 0, err
		}

		// Lost the first-allocation race; the row exists now.
		res = tx.WithContext(ctx).Exec(
			`UPDATE document_sequences SET last_value = last_value + 1, updated_at = ? WHERE scope = ? AND day = ?`,
			now, scope, day.Key(),
		)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrExhausted
		}
	}

	var row struct {
		LastValue int64 `gorm:"column:last_value"`
	}
	if err := tx.WithContext(ctx).Raw(
		`SELECT last_value FROM document_sequences WHERE scope = ? AND day = ?`,
		scope, day.Key(),
	).Scan(&row).Error; err != nil {
		return 0, err
	}
	if row.LastValue <= 0 {
		return 0, ErrExhausted
	}

	return row.LastValue, nil
}

// Mint allocates the next number for scope on the day containing now and
// renders it through the template.
func (a *Allocator) Mint(ctx context.Context, tx *gorm.DB, scope, template string, now time.Time) (string, error) {
	day := DayOf(now)

	seq, err := a.Next(ctx, tx, scope, day)
	if err != nil {
		return "", err
	}

	number, err := FormatDocumentNumber(template, day.Start, seq)
	if err != nil {
		return "", err
	}

	a.log.Debug("document number minted",
		zap.String("scope", scope),
		zap.String("day", day.Key()),
		zap.Int64("seq", seq),
	)
	return number, nil
}
