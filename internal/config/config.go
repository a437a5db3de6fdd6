package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	WeatherAPIKey string `envconfig:"WEATHER_API_KEY" required:"true"`
	WeatherLang   string `envconfig:"WEATHER_LANG" default:"en"`
	DBPath        string `envconfig:"DB_PATH" default:"./data/weatherbot.db"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`

	// Scheduler and throttling knobs.
	TickInterval   time.Duration `envconfig:"TICK_INTERVAL" default:"60s"`
	Cooldown       time.Duration `envconfig:"REFRESH_COOLDOWN" default:"1h"`
	ActiveFromHour int           `envconfig:"ACTIVE_FROM_HOUR" default:"8"`
	ActiveToHour   int           `envconfig:"ACTIVE_TO_HOUR" default:"20"`
}

// Load reads an optional .env file and then the environment into Config.
func Load() (Config, error) {
	// .env is a development convenience; missing file is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
