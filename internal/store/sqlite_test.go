package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yrdnv/TelegramWeatherBot/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testUser(chatID int64) *domain.User {
	return &domain.User{
		ChatID:     chatID,
		Username:   "gopher",
		Lat:        55.75,
		Lon:        37.61,
		Weather:    "*Moscow*\n_Clear_\n",
		LastUpdate: time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGetUser(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	want := testUser(1)
	if err := repo.CreateUser(ctx, want); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ChatID != want.ChatID || got.Username != want.Username ||
		got.Lat != want.Lat || got.Lon != want.Lon ||
		got.Weather != want.Weather || !got.LastUpdate.Equal(want.LastUpdate) ||
		got.Subscribed || got.PeriodHours != 0 {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetUser(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateWeather(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	u := testUser(7)
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := u.LastUpdate.Add(2 * time.Hour)
	if err := repo.UpdateWeather(ctx, 7, 59.93, 30.33, "*Saint Petersburg*\n_Rain_\n", at); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Lat != 59.93 || got.Lon != 30.33 {
		t.Fatalf("coordinates not updated: %+v", got)
	}
	if got.Weather != "*Saint Petersburg*\n_Rain_\n" {
		t.Fatalf("weather not updated: %q", got.Weather)
	}
	if !got.LastUpdate.Equal(at) {
		t.Fatalf("last_update = %v, want %v", got.LastUpdate, at)
	}
}

func TestUpdateWeatherKeepsLastUpdateMonotonic(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	u := testUser(8)
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	// An update with an older timestamp must not move last_update backwards.
	older := u.LastUpdate.Add(-time.Hour)
	if err := repo.UpdateWeather(ctx, 8, u.Lat, u.Lon, "stale write", older); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetUser(ctx, 8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastUpdate.Equal(u.LastUpdate) {
		t.Fatalf("last_update moved backwards: %v -> %v", u.LastUpdate, got.LastUpdate)
	}
	if got.Weather != u.Weather {
		t.Fatalf("stale write replaced the report: %q", got.Weather)
	}
}

func TestSetSubscriptionAndListSubscribed(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if err := repo.CreateUser(ctx, testUser(id)); err != nil {
			t.Fatalf("create %d: %v", id, err)
		}
	}
	if err := repo.SetSubscription(ctx, 1, true, 3); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := repo.SetSubscription(ctx, 2, true, 6); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	subs, err := repo.ListSubscribed(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("want 2 subscribed users, got %d", len(subs))
	}

	// Unsubscribing clears the flag and the period; the record stays.
	if err := repo.SetSubscription(ctx, 1, false, 0); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	subs, err = repo.ListSubscribed(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 || subs[0].ChatID != 2 {
		t.Fatalf("want only user 2 subscribed, got %+v", subs)
	}

	u, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get after unsubscribe: %v", err)
	}
	if u.Subscribed || u.PeriodHours != 0 {
		t.Fatalf("unsubscribe did not reset flags: %+v", u)
	}
}
