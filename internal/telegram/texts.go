package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Callback payloads. Numeric payloads ("1", "3", "6") select a subscription
// period in hours.
const (
	cbSettings = "set"
	cbNow      = "now"
	cbLocation = "start"
	cbUnset    = "unset"
	cbTomorrow = "tomorrow"
)

// UI texts
const (
	startText      = "Okay! I need your coordinates for the weather report. 📍"
	shareLocation  = "Share location"
	noRecordText   = "Get your weather first: /start"
	fetchFailText  = "Weather service is unavailable, please try again later."
	tooManyFmt     = "Too many requests, try again later.\nLast update: %s\n%s\n/set — settings"
	settingsFmt    = "Subscription for %s\nMessages are sent only during the day."
	subscribedFmt  = "You picked every %s hour(s).\nChange location: /start\nManage subscription: /set"
	unsubscribed   = "You have been unsubscribed. 👋"
	changeLocation = "Changing location..."
	tomorrowFmt    = "Tomorrow's weather in %s"
	settingsHint   = "/set — settings"
)

// locationKeyboard asks Telegram to attach the user's coordinates.
func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(shareLocation),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// reportKeyboard is attached under every fresh report.
func reportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Subscribe", cbSettings),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Tomorrow's forecast", cbTomorrow),
		),
	)
}

// settingsKeyboard is the /set menu: period presets plus maintenance actions.
func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Every hour", "1"),
			tgbotapi.NewInlineKeyboardButtonData("Every 3 hours", "3"),
			tgbotapi.NewInlineKeyboardButtonData("Every 6 hours", "6"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Change location", cbLocation),
			tgbotapi.NewInlineKeyboardButtonData("🔕 Unsubscribe", cbUnset),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Current report", cbNow),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Tomorrow's forecast", cbTomorrow),
		),
	)
}
