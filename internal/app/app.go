package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yrdnv/TelegramWeatherBot/internal/config"
	"github.com/yrdnv/TelegramWeatherBot/internal/scheduler"
	"github.com/yrdnv/TelegramWeatherBot/internal/service"
	"github.com/yrdnv/TelegramWeatherBot/internal/store"
	"github.com/yrdnv/TelegramWeatherBot/internal/telegram"
	"github.com/yrdnv/TelegramWeatherBot/internal/weather"
)

// App wires the bot, the record store, the weather client and the scheduler
// together and drives the long-polling update loop.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

// New constructs the application. Storage and handlers are opened in Run.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// Run starts all components and blocks until a shutdown signal.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting weather-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("tick", a.cfg.TickInterval),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	client := weather.NewClient(a.cfg.WeatherAPIKey, a.cfg.WeatherLang)
	svc := service.NewWeather(repo, client, a.log, a.cfg.Cooldown)
	a.router = telegram.NewRouter(a.bot, a.log, repo, svc)

	a.sched = scheduler.New(repo, svc, a.router, a.log,
		a.cfg.TickInterval, a.cfg.ActiveFromHour, a.cfg.ActiveToHour)
	if err := a.sched.Start(ctx); err != nil {
		a.log.Error("scheduler start failed", zap.Error(err))
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			a.sched.Stop()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()
			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}

			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
