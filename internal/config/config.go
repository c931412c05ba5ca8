// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"habit_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Habits ---
	// Окно календаря привычки в днях: сколько последних дней показываем.
	HabitTimelineDays int `envconfig:"HABIT_TIMELINE_DAYS" default:"30"`
	// Очки за выполнение по умолчанию (если не указаны при создании привычки).
	HabitDefaultPoints int64 `envconfig:"HABIT_DEFAULT_POINTS" default:"10"`

	// --- Redeem (выкуп пропущенного дня за очки) ---
	// Базовая цена = очки привычки * множитель.
	RedeemBaseMultiplier int64 `envconfig:"REDEEM_BASE_MULTIPLIER" default:"5"`
	// Надбавка за каждый день старше вчерашнего.
	RedeemDailySurcharge int64 `envconfig:"REDEEM_DAILY_SURCHARGE" default:"10"`
	// Горизонт выкупа: дни старше этого выкупить нельзя.
	RedeemHorizonDays int `envconfig:"REDEEM_HORIZON_DAYS" default:"30"`

	// --- Economy ---
	EconomyStartingBalance int64 `envconfig:"ECONOMY_STARTING_BALANCE" default:"0"`

	// --- Reminders ---
	// Час (0-23), в который бот напоминает о невыполненных привычках.
	ReminderHour int `envconfig:"REMINDER_HOUR" default:"20"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureRedeemEnabled    bool `envconfig:"FEATURE_REDEEM_ENABLED" default:"true"`
	FeatureRemindersEnabled bool `envconfig:"FEATURE_REMINDERS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс приложения.
// Если пояс из конфига не загрузился — фиксированный UTC+3.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.HabitTimelineDays <= 0 {
		return fmt.Errorf("HABIT_TIMELINE_DAYS должен быть > 0")
	}
	if c.RedeemBaseMultiplier <= 0 || c.RedeemDailySurcharge < 0 {
		return fmt.Errorf("некорректные REDEEM_BASE_MULTIPLIER/REDEEM_DAILY_SURCHARGE")
	}
	if c.RedeemHorizonDays <= 0 {
		return fmt.Errorf("REDEEM_HORIZON_DAYS должен быть > 0")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR должен быть в диапазоне 0-23")
	}
	if c.EconomyStartingBalance < 0 {
		return fmt.Errorf("ECONOMY_STARTING_BALANCE не может быть отрицательным")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
