package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	DBMigrate       bool
	RedisURL        string
	JWTSecret       string
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	CodeTTL         time.Duration
	ResendCooldown  time.Duration
	// VerificationMode escolhe a estratégia de verificação: "link" ou "code".
	VerificationMode      string
	AutoVerifyProvisioned bool
	PasswordHash          string
	BcryptCost            int
	FrontendURL           string
	AllowOrigins          []string
	LogLevel              string
	LogFormat             string
	RateLimitPublic       RateLimitConfig
	RateLimitAuth         RateLimitConfig
	SMTP                  SMTPConfig
	Storage               StorageConfig
	WebAuthnRPID          string
	WebAuthnRPOrigin      string
	WebAuthnRPName        string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SMTPConfig descreve o servidor de saída de e-mails.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled indica se há servidor SMTP configurado.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// StorageConfig descreve o destino dos arquivos exportados.
type StorageConfig struct {
	Provider    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	if cfg.DBMigrate, err = parseBoolEnv("DB_MIGRATE", true); err != nil {
		return nil, err
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.VerificationTTL, err = parseDurationEnv("VERIFICATION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CodeTTL, err = parseDurationEnv("CODE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ResendCooldown, err = parseDurationEnv("RESEND_COOLDOWN", time.Minute); err != nil {
		return nil, err
	}

	cfg.VerificationMode = strings.ToLower(strings.TrimSpace(getEnv("VERIFICATION_MODE", "link")))
	switch cfg.VerificationMode {
	case "link", "code":
	default:
		return nil, errors.New("VERIFICATION_MODE deve ser link ou code")
	}

	if cfg.AutoVerifyProvisioned, err = parseBoolEnv("AUTO_VERIFY_PROVISIONED", false); err != nil {
		return nil, err
	}

	cfg.PasswordHash = strings.ToLower(strings.TrimSpace(getEnv("PASSWORD_HASH", "bcrypt")))
	switch cfg.PasswordHash {
	case "bcrypt", "argon2id":
	default:
		return nil, errors.New("PASSWORD_HASH deve ser bcrypt ou argon2id")
	}
	if cfg.BcryptCost, err = parseIntEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:3000")), "/")

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "console"))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP = SMTPConfig{
		Host:     strings.TrimSpace(getEnv("SMTP_HOST", "")),
		Port:     smtpPort,
		User:     getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     strings.TrimSpace(getEnv("SMTP_FROM", getEnv("SMTP_USER", ""))),
	}

	cfg.Storage = StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop"))),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
	}

	cfg.WebAuthnRPID = strings.TrimSpace(getEnv("WEBAUTHN_RP_ID", "localhost"))
	if cfg.WebAuthnRPID == "" {
		cfg.WebAuthnRPID = "localhost"
	}
	cfg.WebAuthnRPOrigin = strings.TrimSpace(getEnv("WEBAUTHN_RP_ORIGIN", cfg.FrontendURL))
	if cfg.WebAuthnRPOrigin == "" {
		cfg.WebAuthnRPOrigin = cfg.FrontendURL
	}
	cfg.WebAuthnRPName = strings.TrimSpace(getEnv("WEBAUTHN_RP_NAME", "JAPAMA"))
	if cfg.WebAuthnRPName == "" {
		cfg.WebAuthnRPName = "JAPAMA"
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}
