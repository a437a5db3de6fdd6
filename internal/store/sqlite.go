package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/yrdnv/TelegramWeatherBot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// CreateUser inserts a fresh record for a chat that has never shared a location.
func (r *SQLiteRepo) CreateUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			chat_id, username, lat, lon, weather,
			last_update, subscribe, period, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ChatID, u.Username, u.Lat, u.Lon, u.Weather,
		u.LastUpdate.UTC().Unix(), boolToInt(u.Subscribed), u.PeriodHours, created,
	)
	return err
}

// GetUser returns a record by chatID or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, username, lat, lon, weather,
		       last_update, subscribe, period, created_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)

	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateWeather overwrites coordinates, the cached report and its timestamp
// in a single statement so the pair never interleaves. A write older than
// the stored last_update is rejected wholesale, keeping last_update
// monotonic and the report paired with its timestamp.
func (r *SQLiteRepo) UpdateWeather(ctx context.Context, chatID int64, lat, lon float64, report string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET lat = ?, lon = ?, weather = ?, last_update = ?
		WHERE chat_id = ? AND last_update <= ?`,
		lat, lon, report, at.UTC().Unix(), chatID, at.UTC().Unix(),
	)
	return err
}

// SetSubscription toggles periodic notifications for a user.
func (r *SQLiteRepo) SetSubscription(ctx context.Context, chatID int64, subscribed bool, periodHours int) error {
	if !subscribed {
		periodHours = 0
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET subscribe = ?, period = ?
		WHERE chat_id = ?`,
		boolToInt(subscribed), periodHours, chatID,
	)
	return err
}

// ListSubscribed returns all users with an active subscription.
// Unsubscribed records are filtered out at the query level.
func (r *SQLiteRepo) ListSubscribed(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, username, lat, lon, weather,
		       last_update, subscribe, period, created_at
		FROM users
		WHERE subscribe = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// scanUser reads one users row via the given Scan function.
func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var (
		chatID     int64
		username   string
		lat, lon   float64
		weather    string
		lastUpdate int64
		subscribed int
		period     int
		createdAt  int64
	)
	if err := scan(
		&chatID, &username, &lat, &lon, &weather,
		&lastUpdate, &subscribed, &period, &createdAt,
	); err != nil {
		return nil, err
	}
	return &domain.User{
		ChatID:      chatID,
		Username:    username,
		Lat:         lat,
		Lon:         lon,
		Weather:     weather,
		LastUpdate:  time.Unix(lastUpdate, 0).UTC(),
		Subscribed:  subscribed != 0,
		PeriodHours: period,
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
	}, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
