package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// Config хранит все настройки приложения
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	PubSub      PubSubConfig
	Submission  SubmissionConfig
	Performance PerformanceConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int

	// ShutdownTimeout — сколько секунд ждать фоновые задачи при остановке.
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis.
// Поддерживает режимы: single, sentinel, cluster.
type RedisConfig struct {
	// Mode: режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов Redis (хост:порт). Для single берется первый.
	Addrs []string `mapstructure:"addrs"`

	// Addr: альтернативный адрес для режима single.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: имя мастер-сервера (только для sentinel).
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// CacheConfig содержит настройки внутрипроцессных кешей
type CacheConfig struct {
	BoardCapacity    int `mapstructure:"board_capacity"`
	PBCapacity       int `mapstructure:"pb_capacity"`
	IdentityCapacity int `mapstructure:"identity_capacity"`

	// MaxAgeSec — максимальный возраст записи в секундах; 0 — без ограничения.
	MaxAgeSec int `mapstructure:"max_age_sec"`
}

// PubSubConfig содержит настройки шины инвалидации
type PubSubConfig struct {
	// Enabled: использовать Redis Pub/Sub. Выключено — события применяются
	// только локально (одиночный процесс).
	Enabled bool `mapstructure:"enabled"`
}

// SubmissionConfig содержит настройки пайплайна отправки скоров
type SubmissionConfig struct {
	ReplayDir string `mapstructure:"replay_dir"`

	// Потолки pp по вариантам; 0 — потолка нет. Скоры выше потолка ограничивают
	// игрока, если у него нет whitelist-привилегии.
	PPCapVanilla   float64 `mapstructure:"pp_cap_vanilla"`
	PPCapRelax     float64 `mapstructure:"pp_cap_relax"`
	PPCapAutopilot float64 `mapstructure:"pp_cap_autopilot"`
}

// PerformanceConfig содержит настройки клиента внешнего pp-калькулятора
type PerformanceConfig struct {
	URL       string `mapstructure:"url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	Retries   int    `mapstructure:"retries"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// CacheMaxAge возвращает максимальный возраст записи кеша.
func (c *CacheConfig) CacheMaxAge() time.Duration {
	return time.Duration(c.MaxAgeSec) * time.Second
}

// Load загружает конфигурацию из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // новый экземпляр, чтобы не трогать глобальное состояние

	// Значения по умолчанию для кешей и сабмита
	vip.SetDefault("cache.board_capacity", 512)
	vip.SetDefault("cache.pb_capacity", 4096)
	vip.SetDefault("cache.identity_capacity", 8192)
	vip.SetDefault("cache.max_age_sec", 1800)
	vip.SetDefault("submission.replay_dir", "data/replays")
	vip.SetDefault("performance.timeout_ms", 2000)
	vip.SetDefault("performance.retries", 2)
	vip.SetDefault("server.shutdown_timeout", 10)

	// Привязываем переменные окружения явно
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("pubsub.enabled", "PUBSUB_ENABLED")

	vip.BindEnv("submission.replay_dir", "SUBMISSION_REPLAY_DIR")
	vip.BindEnv("submission.pp_cap_vanilla", "SUBMISSION_PP_CAP_VANILLA")
	vip.BindEnv("submission.pp_cap_relax", "SUBMISSION_PP_CAP_RELAX")
	vip.BindEnv("submission.pp_cap_autopilot", "SUBMISSION_PP_CAP_AUTOPILOT")

	vip.BindEnv("performance.url", "PERFORMANCE_URL")
	vip.BindEnv("performance.timeout_ms", "PERFORMANCE_TIMEOUT_MS")
	vip.BindEnv("performance.retries", "PERFORMANCE_RETRIES")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("PubSub Enabled: %t", cfg.PubSub.Enabled)
		log.Printf("Replay Dir: %s", cfg.Submission.ReplayDir)
		log.Printf("Performance URL Set: %t", cfg.Performance.URL != "")
		log.Printf("-----------------------------------------")
	}

	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("%w: database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)", apperrors.ErrValidation)
	}
	if cfg.Redis.Addr == "" && len(cfg.Redis.Addrs) == 0 {
		return nil, fmt.Errorf("%w: redis configuration is incomplete (check REDIS_ADDR or REDIS_ADDRS env vars)", apperrors.ErrValidation)
	}
	if cfg.Performance.URL == "" {
		return nil, fmt.Errorf("%w: performance calculator URL is required (check PERFORMANCE_URL env var)", apperrors.ErrValidation)
	}

	return &cfg, nil
}
