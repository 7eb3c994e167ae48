package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Survey     SurveyConfig     `mapstructure:"survey"`
	Heuristics HeuristicsConfig `mapstructure:"heuristics"`
	Posture    PostureConfig    `mapstructure:"posture"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the diagnosis record store.
// Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	DiagnosisSaved   string `mapstructure:"diagnosis_saved"`
	SmishingDetected string `mapstructure:"smishing_detected"`
}

// JWTConfig configures verification of bearer tokens issued by the identity
// provider. Only HS256 shared-secret tokens are accepted.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// SurveyConfig holds tier thresholds and an optional question bank override
type SurveyConfig struct {
	HighThreshold    int    `mapstructure:"high_threshold"`
	MediumThreshold  int    `mapstructure:"medium_threshold"`
	QuestionBankFile string `mapstructure:"question_bank_file"`
}

// ValidateThresholds requires high > medium > 0 so that every tier is reachable
func (c SurveyConfig) ValidateThresholds() error {
	if c.MediumThreshold <= 0 || c.HighThreshold <= c.MediumThreshold {
		return fmt.Errorf("survey thresholds must satisfy high > medium > 0, got high_threshold=%d medium_threshold=%d",
			c.HighThreshold, c.MediumThreshold)
	}
	return nil
}

// HeuristicsConfig parameterises the local smishing rule table
type HeuristicsConfig struct {
	HomePrefix       string   `mapstructure:"home_prefix"`
	HomeRegion       string   `mapstructure:"home_region"`
	VoIPPrefix       string   `mapstructure:"voip_prefix"`
	MobilePrefix     string   `mapstructure:"mobile_prefix"`
	TollFreePrefixes []string `mapstructure:"toll_free_prefixes"`
	Shorteners       []string `mapstructure:"shorteners"`
	PackageSuffix    string   `mapstructure:"package_suffix"`
}

type PostureConfig struct {
	MinIOSVersion     float64 `mapstructure:"min_ios_version"`
	MinAndroidVersion float64 `mapstructure:"min_android_version"`
}

// AnalysisConfig points at the upstream anti-phishing analysis API
type AnalysisConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	MaxBatchSize     int           `mapstructure:"max_batch_size"`
}

// setDefaults registers a default for every key so the service boots without
// a config file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "checkcheck-api")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "checkcheck")
	v.SetDefault("database.dbname", "checkcheck")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.sqlite_path", "checkcheck.db")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "checkcheck:")

	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.stream_name", "CHECKCHECK_EVENTS")
	v.SetDefault("nats.subjects.diagnosis_saved", "diagnosis.saved")
	v.SetDefault("nats.subjects.smishing_detected", "smishing.detected")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("survey.high_threshold", 10)
	v.SetDefault("survey.medium_threshold", 6)

	v.SetDefault("heuristics.home_prefix", "+82")
	v.SetDefault("heuristics.home_region", "KR")
	v.SetDefault("heuristics.voip_prefix", "070")
	v.SetDefault("heuristics.mobile_prefix", "010")
	v.SetDefault("heuristics.toll_free_prefixes", []string{"1588", "1577"})
	v.SetDefault("heuristics.shorteners", []string{
		"bit.ly", "tinyurl.com", "t.co", "goo.gl", "ow.ly", "is.gd",
		"buff.ly", "cutt.ly", "rb.gy", "shorturl.at", "me2.do", "han.gl",
	})
	v.SetDefault("heuristics.package_suffix", ".apk")

	v.SetDefault("posture.min_ios_version", 18)
	v.SetDefault("posture.min_android_version", 14)

	v.SetDefault("analysis.enabled", true)
	v.SetDefault("analysis.base_url", "https://check-check-api.onrender.com")
	v.SetDefault("analysis.timeout", 20*time.Second)
	v.SetDefault("analysis.cache_ttl", 30*time.Minute)
	v.SetDefault("analysis.batch_concurrency", 4)
	v.SetDefault("analysis.max_batch_size", 100)
}

// Load reads configuration from file and environment variables. A missing
// config file is only an error when configPath is set explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/checkcheck")
	}

	v.SetEnvPrefix("CHECKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate checks cross-field constraints viper cannot express
func (c *Config) Validate() error {
	if err := c.Survey.ValidateThresholds(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
