package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yrdnv/TelegramWeatherBot/internal/domain"
	"github.com/yrdnv/TelegramWeatherBot/internal/store"
	"github.com/yrdnv/TelegramWeatherBot/internal/weather"
)

// Fetcher is the slice of the weather client the service needs.
// weather.Client implements it.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (weather.Report, error)
	Tomorrow(ctx context.Context, lat, lon float64) ([]weather.Report, error)
}

// Result is the outcome of a refresh decision: either a freshly fetched
// report or the cached one.
type Result struct {
	Text       string
	LastUpdate time.Time
	Cached     bool
}

// Weather applies the throttled fetch-and-cache policy on top of the record
// store. The read-evaluate-fetch-write cycle for one chat is serialized with
// a per-chat mutex shared by the interactive handlers and the scheduler, so
// two concurrent refreshes can never both observe a stale record and write.
type Weather struct {
	repo     store.Repo
	fetcher  Fetcher
	log      *zap.Logger
	cooldown time.Duration // interactive throttle

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewWeather creates the service. cooldown is the minimum interval between
// interactive fetches for one chat.
func NewWeather(repo store.Repo, fetcher Fetcher, log *zap.Logger, cooldown time.Duration) *Weather {
	return &Weather{
		repo:     repo,
		fetcher:  fetcher,
		log:      log,
		cooldown: cooldown,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// chatLock returns the mutex guarding one chat's record.
func (s *Weather) chatLock(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

// ReportByLocation handles a shared location: creates the record on first
// contact, otherwise re-fetches at the new coordinates if the cooldown has
// elapsed. Within the cooldown the cached report is served and the new
// coordinates are not persisted, matching the interactive refresh rules.
func (s *Weather) ReportByLocation(ctx context.Context, chatID int64, username string, lat, lon float64) (Result, error) {
	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	now := time.Now().UTC()

	u, err := s.repo.GetUser(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return s.create(ctx, chatID, username, lat, lon, now)
	}
	if err != nil {
		return Result{}, fmt.Errorf("get user: %w", err)
	}

	if !domain.ShouldRefresh(now, u.LastUpdate, s.cooldown) {
		return Result{Text: u.Weather, LastUpdate: u.LastUpdate, Cached: true}, nil
	}
	return s.fetchAndStore(ctx, chatID, lat, lon, now)
}

// Report re-runs the throttled refresh on the stored coordinates.
// Returns store.ErrNotFound when the chat never shared a location.
func (s *Weather) Report(ctx context.Context, chatID int64) (Result, error) {
	return s.refresh(ctx, chatID, s.cooldown)
}

// RefreshDue is the scheduler entry point: same policy as Report, but the
// cooldown is the user's own notification period.
func (s *Weather) RefreshDue(ctx context.Context, chatID int64, period time.Duration) (Result, error) {
	return s.refresh(ctx, chatID, period)
}

// Tomorrow fetches tomorrow's forecast for the stored coordinates. The
// forecast is never cached; only current conditions are.
func (s *Weather) Tomorrow(ctx context.Context, chatID int64) (city string, texts []string, err error) {
	u, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		return "", nil, err
	}

	reports, err := s.fetcher.Tomorrow(ctx, u.Lat, u.Lon)
	if err != nil {
		return "", nil, err
	}

	for _, r := range reports {
		city = r.City
		texts = append(texts, weather.RenderForecast(r))
	}
	return city, texts, nil
}

func (s *Weather) refresh(ctx context.Context, chatID int64, cooldown time.Duration) (Result, error) {
	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	u, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	if !domain.ShouldRefresh(now, u.LastUpdate, cooldown) {
		return Result{Text: u.Weather, LastUpdate: u.LastUpdate, Cached: true}, nil
	}
	return s.fetchAndStore(ctx, chatID, u.Lat, u.Lon, now)
}

// fetchAndStore fetches fresh conditions and overwrites the cached report
// together with last_update. A failed fetch leaves the record untouched;
// the error text is never written as if it were weather data.
func (s *Weather) fetchAndStore(ctx context.Context, chatID int64, lat, lon float64, now time.Time) (Result, error) {
	r, err := s.fetcher.Current(ctx, lat, lon)
	if err != nil {
		return Result{}, err
	}

	text := weather.Render(r)
	if err := s.repo.UpdateWeather(ctx, chatID, lat, lon, text, now); err != nil {
		return Result{}, fmt.Errorf("persist report: %w", err)
	}

	s.log.Debug("report refreshed", zap.Int64("chat_id", chatID), zap.String("city", r.City))
	return Result{Text: text, LastUpdate: now}, nil
}

// create handles first contact: fetch, then insert the full record.
func (s *Weather) create(ctx context.Context, chatID int64, username string, lat, lon float64, now time.Time) (Result, error) {
	r, err := s.fetcher.Current(ctx, lat, lon)
	if err != nil {
		return Result{}, err
	}

	text := weather.Render(r)
	u := &domain.User{
		ChatID:     chatID,
		Username:   username,
		Lat:        lat,
		Lon:        lon,
		Weather:    text,
		LastUpdate: now,
		CreatedAt:  now,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return Result{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("new user", zap.Int64("chat_id", chatID), zap.String("city", r.City))
	return Result{Text: text, LastUpdate: now}, nil
}
