package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSheetURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRmZlGCJqjpGyM0CLZiXkY2jjSOU_W5yoR6pQVDHIM2qBDSw6lz4KSEG1B3x1sogqTbL-UE0VoXVcn3/pub?gid=382082490&single=true&output=csv"

// Config aggregates application configuration values loaded from the environment and an
// optional .env file.
type Config struct {
	Env      string
	HTTPAddr string
	Timezone string

	CORSOrigins []string

	SheetURL          string
	SheetCharset      string
	SheetCacheTTL     time.Duration
	SheetFetchTimeout time.Duration
	AvailabilityWait  time.Duration

	CatalogSource string // "file" or "s3"
	CatalogPath   string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3CatalogKey  string
	S3UseSSL      bool

	MongoURI       string
	MongoDB        string
	IdempotencyTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers     []string
	KafkaTopicPrefix string
	EventSource      string

	RateLimitMax    int
	RateLimitWindow time.Duration

	RelayTimeout    time.Duration
	EmailJSEndpoint string
	FormSubmitBase  string

	Site Site
}

// Site holds the public contact details and relay identifiers the front-end renders.
type Site struct {
	Title           string `json:"title"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	WorkHours       string `json:"work_hours"`
	TelegramLink    string `json:"telegram_link"`
	WhatsAppLink    string `json:"whatsapp_link"`
	ViberLink       string `json:"viber_link"`
	AvitoLink       string `json:"avito_link"`
	TourVideoURL    string `json:"tour_video_url"`
	PriceFrom       string `json:"price_from"`
	YearsExperience string `json:"years_experience"`
	HappyClients    string `json:"happy_clients"`
	Properties      string `json:"properties"`
	Awards          string `json:"awards"`

	EmailJSServiceID       string `json:"-"`
	EmailJSContactTemplate string `json:"-"`
	EmailJSPublicKey       string `json:"-"`
	FormEmail              string `json:"-"`
}

// Load parses configuration. Values from the process environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}

	cfg := Config{
		Env:              strings.ToLower(v.GetString("APP_ENV")),
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		Timezone:         v.GetString("TZ_NAME"),
		CORSOrigins:      splitAndTrim(v.GetString("CORS_ORIGINS")),
		SheetURL:         v.GetString("SHEET_CSV_URL"),
		SheetCharset:     strings.ToLower(v.GetString("SHEET_CHARSET")),
		CatalogSource:    strings.ToLower(v.GetString("CATALOG_SOURCE")),
		CatalogPath:      v.GetString("CATALOG_PATH"),
		S3Endpoint:       v.GetString("S3_ENDPOINT"),
		S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:      v.GetString("S3_SECRET_KEY"),
		S3Bucket:         v.GetString("S3_BUCKET"),
		S3CatalogKey:     v.GetString("S3_CATALOG_KEY"),
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDB:          v.GetString("MONGO_DB"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		KafkaBrokers:     splitAndTrim(v.GetString("KAFKA_BROKERS")),
		KafkaTopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX"),
		EventSource:      v.GetString("EVENT_SOURCE"),
		RateLimitMax:     v.GetInt("RATE_LIMIT_MAX"),
		EmailJSEndpoint:  v.GetString("EMAILJS_ENDPOINT"),
		FormSubmitBase:   v.GetString("FORMSUBMIT_BASE_URL"),
		Site: Site{
			Title:                  v.GetString("SITE_TITLE"),
			Phone:                  v.GetString("PHONE_NUMBER"),
			Email:                  v.GetString("EMAIL"),
			Address:                v.GetString("ADDRESS"),
			WorkHours:              v.GetString("WORK_HOURS"),
			TelegramLink:           v.GetString("TELEGRAM_LINK"),
			WhatsAppLink:           v.GetString("WHATSAPP_LINK"),
			ViberLink:              v.GetString("VIBER_LINK"),
			AvitoLink:              v.GetString("AVITO_LINK"),
			TourVideoURL:           v.GetString("TOUR_VIDEO_URL"),
			PriceFrom:              v.GetString("PRICE_FROM"),
			YearsExperience:        v.GetString("YEARS_EXPERIENCE"),
			HappyClients:           v.GetString("HAPPY_CLIENTS"),
			Properties:             v.GetString("PROPERTIES"),
			Awards:                 v.GetString("AWARDS"),
			EmailJSServiceID:       v.GetString("EMAILJS_SERVICE_ID"),
			EmailJSContactTemplate: v.GetString("EMAILJS_TEMPLATE_CONTACT"),
			EmailJSPublicKey:       v.GetString("EMAILJS_PUBLIC_KEY"),
			FormEmail:              v.GetString("FORM_EMAIL"),
		},
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SHEET_CACHE_TTL", &cfg.SheetCacheTTL},
		{"SHEET_FETCH_TIMEOUT", &cfg.SheetFetchTimeout},
		{"AVAILABILITY_WAIT", &cfg.AvailabilityWait},
		{"IDEMP_TTL", &cfg.IdempotencyTTL},
		{"RATE_LIMIT_WINDOW", &cfg.RateLimitWindow},
		{"RELAY_TIMEOUT", &cfg.RelayTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(v, d.key); err != nil {
			return Config{}, err
		}
	}
	if cfg.S3UseSSL, err = parseBool(v, "S3_USE_SSL"); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) validate() error {
	if c.SheetURL == "" {
		return fmt.Errorf("SHEET_CSV_URL is required")
	}
	if c.SheetCacheTTL <= 0 {
		return fmt.Errorf("SHEET_CACHE_TTL must be positive")
	}
	if c.SheetFetchTimeout < 0 || c.AvailabilityWait < 0 {
		return fmt.Errorf("SHEET_FETCH_TIMEOUT and AVAILABILITY_WAIT must not be negative")
	}
	switch c.SheetCharset {
	case "", "utf-8", "utf8", "windows-1251", "cp1251":
	default:
		return fmt.Errorf("unsupported SHEET_CHARSET %q", c.SheetCharset)
	}
	switch c.CatalogSource {
	case "file":
		if c.CatalogPath == "" {
			return fmt.Errorf("CATALOG_PATH is required for file catalog")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3CatalogKey == "" {
			return fmt.Errorf("S3_BUCKET and S3_CATALOG_KEY are required for s3 catalog")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// Default returns the configuration used when Load fails.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg := Config{
		Env:             v.GetString("APP_ENV"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		Timezone:        v.GetString("TZ_NAME"),
		SheetURL:        defaultSheetURL,
		SheetCacheTTL:   5 * time.Minute,
		CatalogSource:   "file",
		CatalogPath:     v.GetString("CATALOG_PATH"),
		MongoDB:         v.GetString("MONGO_DB"),
		IdempotencyTTL:  168 * time.Hour,
		EventSource:     v.GetString("EVENT_SOURCE"),
		RateLimitMax:    3,
		RateLimitWindow: 24 * time.Hour,
		RelayTimeout:    10 * time.Second,
		EmailJSEndpoint: v.GetString("EMAILJS_ENDPOINT"),
		FormSubmitBase:  v.GetString("FORMSUBMIT_BASE_URL"),
	}
	cfg.Site = Site{
		Title:                  v.GetString("SITE_TITLE"),
		Phone:                  v.GetString("PHONE_NUMBER"),
		Email:                  v.GetString("EMAIL"),
		Address:                v.GetString("ADDRESS"),
		WorkHours:              v.GetString("WORK_HOURS"),
		EmailJSServiceID:       v.GetString("EMAILJS_SERVICE_ID"),
		EmailJSContactTemplate: v.GetString("EMAILJS_TEMPLATE_CONTACT"),
		EmailJSPublicKey:       v.GetString("EMAILJS_PUBLIC_KEY"),
		FormEmail:              v.GetString("FORM_EMAIL"),
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("TZ_NAME", "Europe/Moscow")
	v.SetDefault("CORS_ORIGINS", "")

	v.SetDefault("SHEET_CSV_URL", defaultSheetURL)
	v.SetDefault("SHEET_CHARSET", "utf-8")
	v.SetDefault("SHEET_CACHE_TTL", "5m")
	v.SetDefault("SHEET_FETCH_TIMEOUT", "0s")
	v.SetDefault("AVAILABILITY_WAIT", "3s")

	v.SetDefault("CATALOG_SOURCE", "file")
	v.SetDefault("CATALOG_PATH", "data/properties.json")
	v.SetDefault("S3_ENDPOINT", "http://localhost:9000")
	v.SetDefault("S3_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_SECRET_KEY", "minioadmin")
	v.SetDefault("S3_BUCKET", "rentdom")
	v.SetDefault("S3_CATALOG_KEY", "data/properties.json")
	v.SetDefault("S3_USE_SSL", "false")

	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "rentdom")
	v.SetDefault("IDEMP_TTL", "168h")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "")
	v.SetDefault("EVENT_SOURCE", "app://rentdom")

	v.SetDefault("RATE_LIMIT_MAX", 3)
	v.SetDefault("RATE_LIMIT_WINDOW", "24h")

	v.SetDefault("RELAY_TIMEOUT", "10s")
	v.SetDefault("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("FORMSUBMIT_BASE_URL", "https://formsubmit.co")

	v.SetDefault("SITE_TITLE", "РентДом")
	v.SetDefault("PHONE_NUMBER", "+7 (999) 123-45-67")
	v.SetDefault("EMAIL", "info@rentdom.ru")
	v.SetDefault("ADDRESS", "г. Москва, ул. Примерная, д. 123")
	v.SetDefault("WORK_HOURS", "Ежедневно с 9:00 до 21:00")
	v.SetDefault("TELEGRAM_LINK", "https://t.me/rentdom_moscow")
	v.SetDefault("WHATSAPP_LINK", "https://wa.me/79991234567")
	v.SetDefault("VIBER_LINK", "viber://chat?number=%2B79991234567")
	v.SetDefault("AVITO_LINK", "https://www.avito.ru/user/example")
	v.SetDefault("TOUR_VIDEO_URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	v.SetDefault("PRICE_FROM", "3000")
	v.SetDefault("YEARS_EXPERIENCE", "5+")
	v.SetDefault("HAPPY_CLIENTS", "150+")
	v.SetDefault("PROPERTIES", "30+")
	v.SetDefault("AWARDS", "5+")
	v.SetDefault("EMAILJS_SERVICE_ID", "service_your_id")
	v.SetDefault("EMAILJS_TEMPLATE_CONTACT", "template_contact")
	v.SetDefault("EMAILJS_PUBLIC_KEY", "your_public_key")
	v.SetDefault("FORM_EMAIL", "9ckobne2@gmail.com")
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	switch strings.ToLower(raw) {
	case "", "0", "f", "false", "no", "n", "off":
		return false, nil
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
