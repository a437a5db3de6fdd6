package store

import (
	"context"
	"errors"
	"time"

	"github.com/yrdnv/TelegramWeatherBot/internal/domain"
)

// ErrNotFound is returned by GetUser when no record exists for a chat id.
var ErrNotFound = errors.New("user not found")

// Repo defines storage operations for user weather records.
type Repo interface {
	// CreateUser inserts a new record. The chat id must not exist yet.
	CreateUser(ctx context.Context, u *domain.User) error
	// GetUser returns the record for chatID or ErrNotFound.
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	// UpdateWeather overwrites coordinates, the cached report and its
	// timestamp as one statement.
	UpdateWeather(ctx context.Context, chatID int64, lat, lon float64, report string, at time.Time) error
	// SetSubscription toggles periodic notifications. Unsubscribing resets
	// the period to zero.
	SetSubscription(ctx context.Context, chatID int64, subscribed bool, periodHours int) error
	// ListSubscribed returns all records with an active subscription.
	ListSubscribed(ctx context.Context) ([]domain.User, error)
	Close() error
}
