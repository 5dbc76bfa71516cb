package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"` // сервисный чат, 0 = выключено
	} `yaml:"telegram"`
	DB     string `yaml:"db_dsn"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Mexc struct {
		WSURL    string `yaml:"ws_url"`
		RESTBase string `yaml:"rest_base"`
	} `yaml:"mexc"`

	// Пороги pump/dump, в процентах от референсной цены
	PumpThresholdPct    float64 `yaml:"pump_threshold_pct"`    // 3.0
	DumpThresholdPct    float64 `yaml:"dump_threshold_pct"`    // -3.0
	ExtremeThresholdPct float64 `yaml:"extreme_threshold_pct"` // 10.0
	MinVolume24h        float64 `yaml:"min_volume_24h"`        // фильтр ликвидности

	// Политика сброса референса
	RearmIncrementPct float64       `yaml:"rearm_increment_pct"` // 1.5
	ResetBandPct      float64       `yaml:"reset_band_pct"`      // 1.5
	ResetStall        time.Duration // env: RESET_STALL (50s)

	// EMA-200
	EMAPeriod       int           `yaml:"ema_period"`
	EMATimeframes   []string      `yaml:"ema_timeframes"`
	ProximityPct    float64       `yaml:"proximity_pct"` // 1.5
	TouchPct        float64       `yaml:"touch_pct"`     // 0.3
	EMACooldown     time.Duration // env: EMA_COOLDOWN (30m)
	ReconcilePeriod time.Duration // env: RECONCILE_PERIOD (300s)
	DiscoveryPeriod time.Duration // env: DISCOVERY_PERIOD (300s)

	// WS reconnect / подписки
	ReconnectInitial time.Duration // env: RECONNECT_INITIAL (5s)
	ReconnectMax     time.Duration // env: RECONNECT_MAX (60s)
	SubscribeDelay   time.Duration // env: SUBSCRIBE_DELAY (50ms)
	PingInterval     time.Duration // env: PING_INTERVAL (15s)

	AlertQueueSize int    `yaml:"alert_queue_size"`
	HealthAddr     string `yaml:"health_addr"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	config := Config{
		PumpThresholdPct:    floatFromEnv("PUMP_THRESHOLD_PCT", 3.0),
		DumpThresholdPct:    floatFromEnv("DUMP_THRESHOLD_PCT", -3.0),
		ExtremeThresholdPct: floatFromEnv("EXTREME_THRESHOLD_PCT", 10.0),
		MinVolume24h:        floatFromEnv("MIN_VOLUME_24H", 100000),

		RearmIncrementPct: floatFromEnv("REARM_INCREMENT_PCT", 1.5),
		ResetBandPct:      floatFromEnv("RESET_BAND_PCT", 1.5),
		ResetStall:        durationFromEnv("RESET_STALL", "50s"),

		EMAPeriod:       intFromEnv("EMA_PERIOD", 200),
		ProximityPct:    floatFromEnv("PROXIMITY_PCT", 1.5),
		TouchPct:        floatFromEnv("TOUCH_PCT", 0.3),
		EMACooldown:     durationFromEnv("EMA_COOLDOWN", "30m"),
		ReconcilePeriod: durationFromEnv("RECONCILE_PERIOD", "300s"),
		DiscoveryPeriod: durationFromEnv("DISCOVERY_PERIOD", "300s"),

		ReconnectInitial: durationFromEnv("RECONNECT_INITIAL", "5s"),
		ReconnectMax:     durationFromEnv("RECONNECT_MAX", "60s"),
		SubscribeDelay:   durationFromEnv("SUBSCRIBE_DELAY", "50ms"),
		PingInterval:     durationFromEnv("PING_INTERVAL", "15s"),

		AlertQueueSize: intFromEnv("ALERT_QUEUE_SIZE", 4096),
		HealthAddr:     getenvDefault("HEALTH_ADDR", ":8080"),
	}
	if v := os.Getenv("EMA_TIMEFRAMES"); v != "" {
		config.EMATimeframes = strings.Split(v, ",")
	}

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	if file, err := os.Open("configs/" + configFileName); err == nil {
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			_ = file.Close()
			log.Fatalf("Failed to decode config file: %v", err)
		}
		_ = file.Close()
	}

	if config.Mexc.WSURL == "" {
		config.Mexc.WSURL = "wss://contract.mexc.com/edge"
	}
	if config.Mexc.RESTBase == "" {
		config.Mexc.RESTBase = "https://contract.mexc.com"
	}
	if len(config.EMATimeframes) == 0 {
		config.EMATimeframes = []string{"Min15", "Min60", "Hour4", "Day1"}
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate — инварианты конфига проверяем на старте, не на каждом тике.
func (c *Config) Validate() error {
	if c.EMAPeriod <= 1 {
		return fmt.Errorf("EMA_PERIOD must be > 1, got %d", c.EMAPeriod)
	}
	if c.PumpThresholdPct <= 0 {
		return fmt.Errorf("PUMP_THRESHOLD_PCT must be positive, got %v", c.PumpThresholdPct)
	}
	if c.DumpThresholdPct >= 0 {
		return fmt.Errorf("DUMP_THRESHOLD_PCT must be negative, got %v", c.DumpThresholdPct)
	}
	if c.ExtremeThresholdPct <= c.PumpThresholdPct {
		return fmt.Errorf("EXTREME_THRESHOLD_PCT must be > PUMP_THRESHOLD_PCT")
	}
	if c.MinVolume24h < 0 {
		return fmt.Errorf("MIN_VOLUME_24H must be non-negative")
	}
	if c.RearmIncrementPct <= 0 || c.ResetBandPct <= 0 {
		return fmt.Errorf("rearm/reset band percentages must be positive")
	}
	if c.ResetStall <= 0 || c.EMACooldown <= 0 || c.ReconcilePeriod <= 0 {
		return fmt.Errorf("durations must be positive")
	}
	if c.ReconnectInitial <= 0 || c.ReconnectMax < c.ReconnectInitial {
		return fmt.Errorf("reconnect backoff misconfigured")
	}
	for _, tf := range c.EMATimeframes {
		if models.Timeframe(tf).Duration() == 0 {
			return fmt.Errorf("unknown timeframe %q", tf)
		}
	}
	return nil
}

// Timeframes — таймфреймы конфига как models.Timeframe.
func (c *Config) Timeframes() []models.Timeframe {
	out := make([]models.Timeframe, 0, len(c.EMATimeframes))
	for _, tf := range c.EMATimeframes {
		out = append(out, models.Timeframe(tf))
	}
	return out
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
