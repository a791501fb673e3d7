package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Search   SearchConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicAudit    string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// SearchConfig tunes the member lookup itself.
type SearchConfig struct {
	NameCandidateLimit     int
	ResultLimit            int
	PromotionConcurrency   int
	CouponContainsFallback bool
	RateLimitPerMinute     int
	AuditEnabled           bool
}

func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")
	sslMode := "disable"
	if env == "production" {
		sslMode = "require"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  env,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			Name:     getEnv("POSTGRES_DATABASE", ""),
			User:     getEnv("POSTGRES_USER", ""),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  sslMode,

			MaxOpenConns:           getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:           getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMinutes: getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicAudit:    getEnv("KAFKA_TOPIC_MEMBER_AUDIT", "member-lookup-audit"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "member-lookup-audit-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Search: SearchConfig{
			NameCandidateLimit:     getEnvInt("NAME_CANDIDATE_LIMIT", 20),
			ResultLimit:            getEnvInt("RESULT_LIMIT", 100),
			PromotionConcurrency:   getEnvInt("PROMOTION_CONCURRENCY", 8),
			CouponContainsFallback: getEnvBool("COUPON_CONTAINS_FALLBACK", true),
			RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
			AuditEnabled:           getEnvBool("AUDIT_ENABLED", true),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

// DSN returns the connection string for lib/pq. DATABASE_URL wins over the
// individual POSTGRES_* variables.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		if strings.Contains(d.URL, "sslmode=") {
			return d.URL
		}
		sep := "?"
		if strings.Contains(d.URL, "?") {
			sep = "&"
		}
		return d.URL + sep + "sslmode=" + d.SSLMode
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}
