package dailylogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/dbx"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	query := `
		SELECT body, version
		FROM daily_logs
		WHERE user_id = $1 AND log_date = $2
	`
	var body []byte
	log := meallog.DailyLog{Date: date}

	if err := r.db.QueryRowContext(ctx, query, userID, date).Scan(&body, &log.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return meallog.DailyLog{}, common.ErrorNotFound
		}
		return meallog.DailyLog{}, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(body, &log.Meals); err != nil {
		return meallog.DailyLog{}, fmt.Errorf("corrupt daily log body: %w", err)
	}
	return log, nil
}

func (r *PostgresRepository) Save(ctx context.Context, userID string, log meallog.DailyLog, expected int64) (int64, error) {
	body, err := json.Marshal(log.Meals)
	if err != nil {
		return 0, fmt.Errorf("marshal daily log: %w", err)
	}

	next := expected + 1

	var res sql.Result
	if expected == 0 {
		query := `
			INSERT INTO daily_logs (user_id, log_date, body, version, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (user_id, log_date) DO NOTHING
		`
		res, err = r.db.ExecContext(ctx, query, userID, log.Date, body, next)
	} else {
		query := `
			UPDATE daily_logs
			SET body = $3, version = $4, updated_at = now()
			WHERE user_id = $1 AND log_date = $2 AND version = $5
		`
		res, err = r.db.ExecContext(ctx, query, userID, log.Date, body, next, expected)
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return 0, common.ErrVersionConflict
	}
	return next, nil
}

func (r *PostgresRepository) Notify(ctx context.Context, userID, date string, version int64) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, FormatPayload(userID, date, version)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
