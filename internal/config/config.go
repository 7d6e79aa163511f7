package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Email     EmailConfig
	Avatar    AvatarConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	BaseURL         string // public URL used in verification links
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
	// TrustedProxies are the peers whose X-Forwarded-For / X-Real-IP
	// headers are believed. Empty means the headers are ignored.
	TrustedProxies []netip.Prefix
}

type DatabaseConfig struct {
	Driver         string // postgres (lib/pq), pgx or sqlite
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
	SQLitePath     string
	AutoMigrate    bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// TokenFormat selects the session token issuer: paseto or jwt
	TokenFormat string
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey []byte
	// HS256 secret for jwt sessions
	JWTSecret []byte
	// PasswordHasher is argon2id or bcrypt
	PasswordHasher string
	BcryptCost     int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	From         string
	ProductName  string
}

type AvatarConfig struct {
	Storage        string // local or s3
	Dir            string
	URLPrefix      string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
}

type RateLimitConfig struct {
	IPLimit       int
	Window        time.Duration
	EmailCooldown time.Duration
}

const (
	TokenFormatPaseto = "paseto"
	TokenFormatJWT    = "jwt"

	HasherArgon2 = "argon2id"
	HasherBcrypt = "bcrypt"

	AvatarStorageLocal = "local"
	AvatarStorageS3    = "s3"

	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Load reads configuration from environment variables, after loading a
// .env file when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "3000")
	env := getEnv("APP_ENV", "dev")

	smtpUser := getEnv("SMTP_USER", "")

	trustedProxies, err := parsePrefixes(getSliceEnv("TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			Env:             env,
			BaseURL:         strings.TrimRight(getEnv("APP_BASE_URL", defaultBaseURL(env, port)), "/"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
			TrustedProxies:  trustedProxies,
		},
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", DriverPostgres),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "accounts"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
			SQLitePath:     getEnv("DB_SQLITE_PATH", "file:accounts.db?cache=shared"),
			AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenFormat:    getEnv("AUTH_TOKEN_FORMAT", TokenFormatPaseto),
			PasetoKey:      []byte(getEnv("PASETO_KEY", "")),
			JWTSecret:      []byte(getEnv("JWT_SECRET_KEY", "")),
			PasswordHasher: getEnv("PASSWORD_HASHER", HasherArgon2),
			BcryptCost:     getIntEnv("BCRYPT_COST", 12),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     smtpUser,
			SMTPPassword: getEnv("SMTP_PASS", ""),
			From:         getEnv("EMAIL_FROM", smtpUser),
			ProductName:  getEnv("EMAIL_PRODUCT_NAME", "accounts-api"),
		},
		Avatar: AvatarConfig{
			Storage:        getEnv("AVATAR_STORAGE", AvatarStorageLocal),
			Dir:            getEnv("AVATAR_DIR", "public/avatars"),
			URLPrefix:      strings.TrimRight(getEnv("AVATAR_URL_PREFIX", "/avatars"), "/"),
			MaxUploadBytes: int64(getIntEnv("AVATAR_MAX_BYTES", 5<<20)),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3PublicURL:    strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
		},
		RateLimit: RateLimitConfig{
			IPLimit:       getIntEnv("RATE_LIMIT_IP", 10),
			Window:        getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			EmailCooldown: getDurationEnv("RATE_LIMIT_EMAIL_COOLDOWN", 2*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee
func (c *Config) Validate() error {
	switch c.Auth.TokenFormat {
	case TokenFormatPaseto:
		if len(c.Auth.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey))
		}
	case TokenFormatJWT:
		if len(c.Auth.JWTSecret) == 0 {
			return fmt.Errorf("JWT_SECRET_KEY is required when AUTH_TOKEN_FORMAT=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	switch c.Auth.PasswordHasher {
	case HasherArgon2, HasherBcrypt:
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Avatar.Storage {
	case AvatarStorageLocal:
	case AvatarStorageS3:
		if c.Avatar.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when AVATAR_STORAGE=s3")
		}
	default:
		return fmt.Errorf("unsupported AVATAR_STORAGE %q", c.Avatar.Storage)
	}

	if !c.Server.IsDevelopment() && os.Getenv("APP_BASE_URL") == "" {
		return fmt.Errorf("APP_BASE_URL is required outside development")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// parsePrefixes accepts CIDRs and bare addresses
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func defaultBaseURL(env, port string) string {
	if env == "dev" {
		return "http://localhost:" + port
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return b
}

// getDurationEnv reads a whole number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
