package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yrdnv/TelegramWeatherBot/internal/service"
	"github.com/yrdnv/TelegramWeatherBot/internal/store"
)

// Router wires Telegram updates to handlers.
type Router struct {
	bot  *tgbotapi.BotAPI
	log  *zap.Logger
	repo store.Repo
	svc  *service.Weather
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, svc *service.Weather) *Router {
	return &Router{bot: bot, log: log, repo: repo, svc: svc}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID

		if msg.Location != nil {
			r.handleLocation(ctx, msg)
			return
		}

		text := strings.TrimSpace(msg.Text)
		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(chatID)
		case strings.HasPrefix(text, "/set"):
			r.handleSettings(ctx, chatID)
		}
		return
	}

	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
	}
}

// handleCallback dispatches inline button presses.
func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	// Acknowledge the press so the client stops the spinner.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Debug("callback ack failed", zap.Error(err))
	}

	switch cb.Data {
	case cbSettings:
		r.handleSettings(ctx, chatID)
	case cbNow:
		r.handleNow(ctx, chatID)
	case cbLocation:
		r.editText(chatID, cb.Message.MessageID, changeLocation)
		r.handleStart(chatID)
	case cbUnset:
		r.handleUnset(ctx, chatID)
	case cbTomorrow:
		r.handleTomorrow(ctx, chatID)
	default:
		if period, err := strconv.Atoi(cb.Data); err == nil {
			r.handleSubscribe(ctx, chatID, cb.Message.MessageID, period)
		}
		// Anything else — ignore silently.
	}
}

// SendReport sends a rendered weather report to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendReport(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}
