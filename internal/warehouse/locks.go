package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/statlake/covidload/schema"
)

// lockAttempts bounds retries when concurrent claims force a serialization
// failure.
const lockAttempts = 3

// AcquireRunLock claims the [minDate, maxDate] key range for runID. Claims
// from other runs that have expired are swept first; an unexpired
// overlapping claim fails with schema.ErrRunConflict. The claim itself is
// committed before the load transaction opens, so two concurrent runs
// touching the same dates cannot both reach the upsert stage.
//
// The claim transaction runs at SERIALIZABLE isolation: under the default
// isolation of MySQL and PostgreSQL, two concurrent claims could each see
// zero conflicts and both insert distinct run_id rows. At SERIALIZABLE the
// loser fails with a serialization or deadlock error instead; it is retried
// and then observes the winner's committed claim.
func (s *StoreImpl) AcquireRunLock(ctx context.Context, runID string, minDate, maxDate time.Time, ttl time.Duration) error {
	var err error
	for range lockAttempts {
		err = s.tryAcquireRunLock(ctx, runID, minDate, maxDate, ttl)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("claim run lock after %d attempts: %w", lockAttempts, err)
}

func (s *StoreImpl) tryAcquireRunLock(ctx context.Context, runID string, minDate, maxDate time.Time, ttl time.Duration) error {
	now := time.Now().Unix()
	minStr := minDate.Format(schema.DateFormat)
	maxStr := maxDate.Format(schema.DateFormat)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin lock transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sweep := fmt.Sprintf(`DELETE FROM covid_run_locks WHERE expires_at <= %s`, s.placeholder(1))
	if _, err := tx.ExecContext(ctx, sweep, now); err != nil {
		return fmt.Errorf("sweep expired run locks: %w", err)
	}

	// Two date ranges overlap unless one ends before the other starts.
	overlap := fmt.Sprintf(
		`SELECT COUNT(*) FROM covid_run_locks WHERE run_id <> %s AND NOT (max_date < %s OR min_date > %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3))
	var conflicts int
	if err := tx.QueryRowContext(ctx, overlap, runID, minStr, maxStr).Scan(&conflicts); err != nil {
		return fmt.Errorf("check run lock conflicts: %w", err)
	}
	if conflicts > 0 {
		return fmt.Errorf("%w: [%s, %s]", schema.ErrRunConflict, minStr, maxStr)
	}

	claim := fmt.Sprintf(
		`INSERT INTO covid_run_locks (run_id, min_date, max_date, expires_at) VALUES (%s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4))
	if _, err := tx.ExecContext(ctx, claim, runID, minStr, maxStr, time.Now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("claim run lock: %w", err)
	}

	return tx.Commit()
}

// isSerializationFailure reports whether the error is a serialization or
// deadlock failure from a concurrent claim, worth retrying.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		// 1213 ER_LOCK_DEADLOCK, 1205 ER_LOCK_WAIT_TIMEOUT
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	return false
}

// ReleaseRunLock drops the claim held by runID. Missing claims are not an
// error; the sweep may already have removed an expired one.
func (s *StoreImpl) ReleaseRunLock(ctx context.Context, runID string) error {
	query := fmt.Sprintf(`DELETE FROM covid_run_locks WHERE run_id = %s`, s.placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
