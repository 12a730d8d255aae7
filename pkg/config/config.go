// Package config собирает настройки бота из YAML-файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Бэкенды истории запросов.
const (
	HistoryFile   = "file"
	HistoryRedis  = "redis"
	HistorySQLite = "sqlite"
)

// Config содержит все настройки приложения.
type Config struct {
	TelegramToken string `yaml:"telegram_token"`
	WebhookURL    string `yaml:"webhook_url"`
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"log_level"`

	// EventTimeout ограничивает обработку одного обновления, включая ffmpeg.
	EventTimeout time.Duration `yaml:"event_timeout"`

	SpotifyClientID     string  `yaml:"spotify_client_id"`
	SpotifyClientSecret string  `yaml:"spotify_client_secret"`
	SearchLimit         int     `yaml:"search_limit"`
	MinMatchScore       int     `yaml:"min_match_score"`
	AcoustIDKey         string  `yaml:"acoustid_api_key"`
	FpcalcPath          string  `yaml:"fpcalc_path"`
	Media               Media   `yaml:"media"`
	History             History `yaml:"history"`

	GoogleCloudProject string `yaml:"google_cloud_project"`
	PubSubTopic        string `yaml:"pubsub_topic"`
}

// Media задаёт параметры скачивания и перекодирования.
type Media struct {
	Dir              string        `yaml:"dir"`
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	TranscodeTimeout time.Duration `yaml:"transcode_timeout"`
	MaxFileSize      int64         `yaml:"max_file_size"`
}

// History задаёт, где хранится история запросов по чатам.
type History struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_address"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// Defaults возвращает конфигурацию со значениями по умолчанию.
func Defaults() *Config {
	return &Config{
		Port:         "8080",
		LogLevel:     "info",
		EventTimeout: 5 * time.Minute,
		SearchLimit:  10,
		FpcalcPath:   "fpcalc",
		Media: Media{
			Dir:              filepath.Join(os.TempDir(), "musicfinder"),
			FFmpegPath:       "ffmpeg",
			TranscodeTimeout: 2 * time.Minute,
			MaxFileSize:      20 * 1024 * 1024,
		},
		History: History{
			Backend:    HistoryFile,
			Path:       "data.json",
			SQLitePath: "./data/history.db",
		},
	}
}

// Load читает CONFIG_FILE (если задан), затем переопределяет значения из окружения.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv переопределяет значения из окружения. Ошибки разбора чисел и
// длительностей собираются в одну.
func (c *Config) applyEnv() error {
	var errs []error
	getEnvInt := func(key string, fallback int) int {
		n, err := parseEnv(key, fallback, strconv.Atoi)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	getEnvDuration := func(key string, fallback time.Duration) time.Duration {
		d, err := parseEnv(key, fallback, time.ParseDuration)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	c.TelegramToken = getEnv("BOT_API_TOKEN", c.TelegramToken)
	c.WebhookURL = strings.TrimRight(getEnv("WEBHOOK_URL", c.WebhookURL), "/")
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EventTimeout = getEnvDuration("EVENT_TIMEOUT", c.EventTimeout)

	c.SpotifyClientID = getEnv("SPOTIFY_CLIENT_ID", c.SpotifyClientID)
	c.SpotifyClientSecret = getEnv("SPOTIFY_CLIENT_SECRET", c.SpotifyClientSecret)
	c.SearchLimit = getEnvInt("SEARCH_LIMIT", c.SearchLimit)
	c.MinMatchScore = getEnvInt("MIN_MATCH_SCORE", c.MinMatchScore)
	c.AcoustIDKey = getEnv("ACOUSTID_API_KEY", c.AcoustIDKey)
	c.FpcalcPath = getEnv("FPCALC_PATH", c.FpcalcPath)

	c.Media.Dir = getEnv("MEDIA_DIR", c.Media.Dir)
	c.Media.FFmpegPath = getEnv("FFMPEG_PATH", c.Media.FFmpegPath)
	c.Media.TranscodeTimeout = getEnvDuration("TRANSCODE_TIMEOUT", c.Media.TranscodeTimeout)
	c.Media.MaxFileSize = int64(getEnvInt("MAX_FILE_SIZE", int(c.Media.MaxFileSize)))

	c.History.Backend = strings.ToLower(getEnv("HISTORY_BACKEND", c.History.Backend))
	c.History.Path = getEnv("HISTORY_PATH", c.History.Path)
	c.History.RedisAddr = getEnv("REDIS_ADDRESS", c.History.RedisAddr)
	c.History.RedisPassword = getEnv("REDIS_PASSWORD", c.History.RedisPassword)
	c.History.RedisDB = getEnvInt("REDIS_DB", c.History.RedisDB)
	c.History.SQLitePath = getEnv("SQLITE_PATH", c.History.SQLitePath)

	c.GoogleCloudProject = getEnv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	c.PubSubTopic = getEnv("PUBSUB_TOPIC", c.PubSubTopic)
	return errors.Join(errs...)
}

// Validate проверяет, что обязательные параметры заданы.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("BOT_API_TOKEN cannot be empty")
	}
	if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	if c.AcoustIDKey == "" {
		return fmt.Errorf("ACOUSTID_API_KEY cannot be empty")
	}
	if c.SearchLimit <= 0 || c.SearchLimit > 50 {
		return fmt.Errorf("SEARCH_LIMIT must be in 1..50")
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		return fmt.Errorf("MIN_MATCH_SCORE must be in 0..100")
	}
	if c.Media.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0")
	}
	if c.EventTimeout <= 0 {
		return fmt.Errorf("EVENT_TIMEOUT must be > 0")
	}
	if c.Media.TranscodeTimeout <= 0 {
		return fmt.Errorf("TRANSCODE_TIMEOUT must be > 0")
	}
	if c.Media.TranscodeTimeout >= c.EventTimeout {
		return fmt.Errorf("TRANSCODE_TIMEOUT (%s) must be less than EVENT_TIMEOUT (%s)", c.Media.TranscodeTimeout, c.EventTimeout)
	}
	switch c.History.Backend {
	case HistoryFile:
		if c.History.Path == "" {
			return fmt.Errorf("HISTORY_PATH cannot be empty")
		}
	case HistoryRedis:
		if c.History.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the redis history backend")
		}
	case HistorySQLite:
		if c.History.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.History.Backend)
	}
	if c.PubSubTopic != "" && c.GoogleCloudProject == "" {
		return fmt.Errorf("PUBSUB_TOPIC requires GOOGLE_CLOUD_PROJECT")
	}
	return nil
}

// UseWebhook сообщает, работает ли бот через вебхук вместо long polling.
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseEnv[T any](key string, fallback T, parse func(string) (T, error)) (T, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := parse(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s=%q: %w", key, value, err)
	}
	return v, nil
}
