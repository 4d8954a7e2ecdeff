// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"truetrace/pkg/domain"
	tstrings "truetrace/pkg/platform/strings"
)

// Config aggregates every configuration group.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Hedera   HederaConfig
	Wallet   WalletConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	MetricsAddr     string
	AdminToken      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	DrainDuration   time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig governs access token issuance and role assignment.
type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
	TokenTTL      time.Duration
	RoleMap       map[domain.AccountID]domain.Role
}

// HederaConfig describes the operator account and the event topic.
type HederaConfig struct {
	Network      string
	OperatorID   string
	OperatorKey  string
	KeyType      string // ECDSA|ED25519, empty to detect from DER
	TopicID      string
	TopicMemo    string
	AccountsFile string
}

// Wallet providers.
const (
	WalletProviderBridge = "bridge"
	WalletProviderLocal  = "local"
)

// WalletConfig controls relay fallback and pairing.
type WalletConfig struct {
	Provider       string
	ProjectID      string
	RelayURLs      []string
	MaxRetries     int
	RetryDelay     time.Duration
	PairingTimeout time.Duration
	BridgeURL      string
	Chain          string
	SessionTTL     time.Duration
	AppName        string
	AppDescription string
	AppURL         string
}

// PostgresConfig holds the record store connection. An empty DSN selects the
// in-memory stores.
type PostgresConfig struct {
	DSN            string
	MaxOpenConns   int
	MaxIdleConns   int
	MigrateOnStart bool
}

// RedisConfig holds the session store connection. An empty URL keeps the
// session in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the event mirror. No brokers disables mirroring.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string
	Format string // text|json
}

const (
	defaultAddr            = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultDrainDuration   = 5 * time.Second
	defaultShutdownTimeout = 15 * time.Second

	defaultJWTSigningKey = "dev-secret-key-change-in-production"
	defaultIssuer        = "truetrace"
	defaultAudience      = "truetrace-api"
	defaultTokenTTL      = time.Hour

	defaultNetwork      = "testnet"
	defaultTopicMemo    = "TrueTrace Nigeria Supply Chain"
	defaultAccountsFile = "accounts.json"

	defaultWalletMaxRetries     = 3
	defaultWalletRetryDelay     = 2 * time.Second
	defaultWalletPairingTimeout = 5 * time.Minute
	defaultWalletChain          = "hedera:testnet"
	defaultAppName              = "TrueTrace"
	defaultAppDescription       = "Supply chain provenance on Hedera"

	defaultPostgresMaxOpen = 10
	defaultPostgresMaxIdle = 5

	defaultRedisPoolSize     = 10
	defaultRedisMinIdleConns = 2
	defaultRedisDialTimeout  = 5 * time.Second
	defaultRedisIOTimeout    = 3 * time.Second

	defaultKafkaTopic    = "truetrace.events"
	defaultKafkaClientID = "truetrace"

	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// DefaultRelayURLs are the public relays tried in order.
var DefaultRelayURLs = []string{"wss://relay.walletconnect.com", "wss://relay.walletconnect.org"}

// DefaultRoleMap assigns the demo supply chain accounts. Every other account
// is a Consumer.
var DefaultRoleMap = "0.0.6451900=Manufacturer,0.0.6451901=Retailer,0.0.6451902=Wholesaler"

// Load reads configuration from environment variables, applying defaults and
// validating the result.
func Load() (Config, error) {
	p := &parser{}

	cfg := Config{
		Server: ServerConfig{
			Addr:            valueOrDefault("SERVER_ADDR", defaultAddr),
			MetricsAddr:     os.Getenv("METRICS_ADDR"),
			AdminToken:      os.Getenv("ADMIN_TOKEN"),
			ReadTimeout:     p.duration("SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    p.duration("SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			DrainDuration:   p.duration("SERVER_DRAIN_DURATION", defaultDrainDuration),
			ShutdownTimeout: p.duration("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Auth: AuthConfig{
			JWTSigningKey: valueOrDefault("JWT_SIGNING_KEY", defaultJWTSigningKey),
			Issuer:        valueOrDefault("JWT_ISSUER", defaultIssuer),
			Audience:      valueOrDefault("JWT_AUDIENCE", defaultAudience),
			TokenTTL:      p.duration("TOKEN_TTL", defaultTokenTTL),
		},
		Hedera: hederaFromEnv(),
		Wallet: WalletConfig{
			Provider:       valueOrDefault("WALLET_PROVIDER", WalletProviderBridge),
			ProjectID:      os.Getenv("WALLETCONNECT_PROJECT_ID"),
			RelayURLs:      tstrings.SplitList(os.Getenv("WALLET_RELAY_URLS"), ","),
			MaxRetries:     p.int("WALLET_MAX_RETRIES", defaultWalletMaxRetries),
			RetryDelay:     p.duration("WALLET_RETRY_DELAY", defaultWalletRetryDelay),
			PairingTimeout: p.duration("WALLET_PAIRING_TIMEOUT", defaultWalletPairingTimeout),
			BridgeURL:      os.Getenv("WALLET_BRIDGE_URL"),
			Chain:          valueOrDefault("WALLET_CHAIN", defaultWalletChain),
			SessionTTL:     p.duration("WALLET_SESSION_TTL", 0),
			AppName:        valueOrDefault("WALLET_APP_NAME", defaultAppName),
			AppDescription: valueOrDefault("WALLET_APP_DESCRIPTION", defaultAppDescription),
			AppURL:         os.Getenv("WALLET_APP_URL"),
		},
		Postgres: postgresFromEnv(p),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.int("REDIS_POOL_SIZE", defaultRedisPoolSize),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", defaultRedisMinIdleConns),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", defaultRedisDialTimeout),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", defaultRedisIOTimeout),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", defaultRedisIOTimeout),
		},
		Kafka: kafkaFromEnv(),
		Log:   logFromEnv(),
	}
	if len(cfg.Wallet.RelayURLs) == 0 {
		cfg.Wallet.RelayURLs = append([]string(nil), DefaultRelayURLs...)
	}

	roles, err := ParseRoleMap(valueOrDefault("ROLE_MAP", DefaultRoleMap))
	if err != nil {
		p.errs = append(p.errs, err)
	}
	cfg.Auth.RoleMap = roles

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Tooling is the subset of configuration the provisioning CLI needs.
type Tooling struct {
	Hedera   HederaConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

// LoadTooling reads the ledger, database, mirror and log settings only, so
// the CLI runs without server or wallet configuration.
func LoadTooling() (Tooling, error) {
	p := &parser{}
	t := Tooling{
		Hedera:   hederaFromEnv(),
		Postgres: postgresFromEnv(p),
		Kafka:    kafkaFromEnv(),
		Log:      logFromEnv(),
	}
	if err := errors.Join(p.errs...); err != nil {
		return Tooling{}, err
	}
	return t, nil
}

func hederaFromEnv() HederaConfig {
	return HederaConfig{
		Network:      valueOrDefault("HEDERA_NETWORK", defaultNetwork),
		OperatorID:   os.Getenv("HEDERA_OPERATOR_ID"),
		OperatorKey:  os.Getenv("HEDERA_OPERATOR_KEY"),
		KeyType:      strings.ToUpper(os.Getenv("HEDERA_KEY_TYPE")),
		TopicID:      os.Getenv("HEDERA_TOPIC_ID"),
		TopicMemo:    valueOrDefault("HEDERA_TOPIC_MEMO", defaultTopicMemo),
		AccountsFile: valueOrDefault("HEDERA_ACCOUNTS_FILE", defaultAccountsFile),
	}
}

func postgresFromEnv(p *parser) PostgresConfig {
	return PostgresConfig{
		DSN:            os.Getenv("DATABASE_URL"),
		MaxOpenConns:   p.int("POSTGRES_MAX_OPEN_CONNS", defaultPostgresMaxOpen),
		MaxIdleConns:   p.int("POSTGRES_MAX_IDLE_CONNS", defaultPostgresMaxIdle),
		MigrateOnStart: p.bool("POSTGRES_MIGRATE_ON_START", true),
	}
}

func kafkaFromEnv() KafkaConfig {
	return KafkaConfig{
		Brokers:  tstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
		Topic:    valueOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
		ClientID: valueOrDefault("KAFKA_CLIENT_ID", defaultKafkaClientID),
	}
}

func logFromEnv() LogConfig {
	return LogConfig{
		Level:  valueOrDefault("LOG_LEVEL", defaultLogLevel),
		Format: valueOrDefault("LOG_FORMAT", defaultLogFormat),
	}
}

// Validate checks cross field constraints.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY cannot be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	switch c.Wallet.Provider {
	case WalletProviderBridge:
		if c.Wallet.BridgeURL == "" {
			errs = append(errs, errors.New("WALLET_BRIDGE_URL is required for the bridge wallet provider"))
		}
	case WalletProviderLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown WALLET_PROVIDER %q", c.Wallet.Provider))
	}
	if c.Wallet.MaxRetries < 1 {
		errs = append(errs, errors.New("WALLET_MAX_RETRIES must be at least 1"))
	}
	if c.Wallet.PairingTimeout <= 0 {
		errs = append(errs, errors.New("WALLET_PAIRING_TIMEOUT must be positive"))
	}
	switch c.Hedera.KeyType {
	case "", "ECDSA", "ED25519":
	default:
		errs = append(errs, fmt.Errorf("unknown HEDERA_KEY_TYPE %q", c.Hedera.KeyType))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ParseRoleMap parses "0.0.1=Manufacturer,0.0.2=Retailer". Unknown roles and
// malformed accounts are errors.
func ParseRoleMap(s string) (map[domain.AccountID]domain.Role, error) {
	pairs, ok := tstrings.SplitPairs(s)
	if !ok {
		return nil, fmt.Errorf("invalid ROLE_MAP %q: entries must be account=role", s)
	}
	out := make(map[domain.AccountID]domain.Role, len(pairs))
	for _, kv := range pairs {
		account, err := domain.ParseAccountID(kv[0])
		if err != nil {
			return nil, fmt.Errorf("invalid ROLE_MAP account %q: %w", kv[0], err)
		}
		role, err := domain.ParseRole(kv[1])
		if err != nil {
			return nil, fmt.Errorf("invalid ROLE_MAP role for %s: %w", account, err)
		}
		out[account] = role
	}
	return out, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser collects parse errors so Load reports all of them at once.
type parser struct {
	errs []error
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}
