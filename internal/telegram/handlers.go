package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yrdnv/TelegramWeatherBot/internal/store"
	"github.com/yrdnv/TelegramWeatherBot/internal/weather"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (r *Router) editText(chatID int64, messageID int, text string) {
	if _, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		r.log.Debug("edit failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// --- Commands ---

// handleStart asks for the user's coordinates via a location-request button.
func (r *Router) handleStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = locationKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// handleLocation runs the throttled refresh for freshly shared coordinates,
// creating the record on first contact.
func (r *Router) handleLocation(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	res, err := r.svc.ReportByLocation(ctx, chatID, msg.Chat.UserName,
		msg.Location.Latitude, msg.Location.Longitude)
	if err != nil {
		r.replyError(chatID, err)
		return
	}

	if res.Cached {
		r.replyThrottled(chatID, res.Text, res.LastUpdate)
		return
	}
	kb := reportKeyboard()
	r.sendMarkdown(chatID, res.Text, &kb)
}

// handleSettings shows the subscription menu. Without a record the user is
// pointed at /start first.
func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	u, err := r.repo.GetUser(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, noRecordText)
		return
	}
	if err != nil {
		r.log.Error("get user failed", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, fetchFailText)
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(settingsFmt, weather.City(u.Weather)))
	msg.ReplyMarkup = settingsKeyboard()
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// --- Callbacks ---

// handleNow re-runs the throttled refresh on the stored coordinates.
func (r *Router) handleNow(ctx context.Context, chatID int64) {
	res, err := r.svc.Report(ctx, chatID)
	if err != nil {
		r.replyError(chatID, err)
		return
	}

	if res.Cached {
		r.replyThrottled(chatID, res.Text, res.LastUpdate)
		return
	}
	kb := reportKeyboard()
	r.sendMarkdown(chatID, res.Text, &kb)
}

// handleSubscribe activates periodic notifications with the chosen period.
func (r *Router) handleSubscribe(ctx context.Context, chatID int64, messageID, periodHours int) {
	if err := r.repo.SetSubscription(ctx, chatID, true, periodHours); err != nil {
		r.log.Error("subscribe failed", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, fetchFailText)
		return
	}
	r.editText(chatID, messageID, fmt.Sprintf(subscribedFmt, strconv.Itoa(periodHours)))
	r.log.Info("subscribed", zap.Int64("chat_id", chatID), zap.Int("period_hours", periodHours))
}

// handleUnset clears the subscription flag; the record itself persists.
func (r *Router) handleUnset(ctx context.Context, chatID int64) {
	if err := r.repo.SetSubscription(ctx, chatID, false, 0); err != nil {
		r.log.Error("unsubscribe failed", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, fetchFailText)
		return
	}
	r.sendText(chatID, unsubscribed)
	r.log.Info("unsubscribed", zap.Int64("chat_id", chatID))
}

// handleTomorrow sends tomorrow's forecast, one message per 3-hour entry.
func (r *Router) handleTomorrow(ctx context.Context, chatID int64) {
	city, texts, err := r.svc.Tomorrow(ctx, chatID)
	if err != nil {
		r.replyError(chatID, err)
		return
	}

	r.sendMarkdown(chatID, fmt.Sprintf(tomorrowFmt, city), nil)
	for _, t := range texts {
		r.sendMarkdown(chatID, t, nil)
	}
	r.sendText(chatID, settingsHint)
}

// --- Replies ---

// replyThrottled serves the cached report with a "too many requests" notice.
func (r *Router) replyThrottled(chatID int64, cached string, lastUpdate time.Time) {
	r.sendMarkdown(chatID, fmt.Sprintf(tooManyFmt, lastUpdate.Format("2006-01-02 15:04"), cached), nil)
}

// replyError maps service errors to user-facing texts. A fetch failure is a
// transient condition; the cached record is known to be intact.
func (r *Router) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.sendText(chatID, noRecordText)
	case errors.Is(err, weather.ErrFetch):
		r.log.Warn("weather fetch failed", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, fetchFailText)
	default:
		r.log.Error("handler error", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, fetchFailText)
	}
}
