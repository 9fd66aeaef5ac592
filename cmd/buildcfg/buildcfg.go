// Package buildcfg turns the loaded YAML configuration into the typed
// configs each subsystem takes.
package buildcfg

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port    string
	BaseURL string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type StripeConfig struct {
	SecretKey  string
	Currency   string
	RefreshURL string
	ReturnURL  string
}

type MediaConfig struct {
	Root string
}

type TicketConfig struct {
	ScanGrace  time.Duration
	PageSize   int
	ScanLimit  int
	ScanWindow time.Duration
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	baseURL := cfg.GetString("server.base_url")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}
	return ServerConfig{Port: port, BaseURL: baseURL}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database.master_dsn is required")
	}
	slaveDSNs := cfg.GetStringSlice("database.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: cfg.GetDuration("database.conn_max_lifetime"),
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 5
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("database config loaded")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return rc, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" {
		rc.Exchange = "clubtix.notifications"
	}
	if rc.Queue == "" {
		rc.Queue = "clubtix.emails"
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("rabbit config loaded")
	return rc, nil
}

func BuildRedisConfig(cfg *config.Config) RedisConfig {
	rc := RedisConfig{
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	}
	if rc.Addr == "" {
		rc.Addr = "localhost:6379"
	}
	return rc
}

func BuildAuthConfig(cfg *config.Config) (AuthConfig, error) {
	ac := AuthConfig{
		Secret:     cfg.GetString("auth.secret"),
		AccessTTL:  cfg.GetDuration("auth.access_ttl"),
		RefreshTTL: cfg.GetDuration("auth.refresh_ttl"),
	}
	if ac.Secret == "" {
		return ac, fmt.Errorf("auth.secret is required")
	}
	if ac.AccessTTL == 0 {
		ac.AccessTTL = 15 * time.Minute
	}
	if ac.RefreshTTL == 0 {
		ac.RefreshTTL = 7 * 24 * time.Hour
	}
	return ac, nil
}

func BuildSMTPConfig(cfg *config.Config) SMTPConfig {
	sc := SMTPConfig{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetString("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
	if sc.Port == "" {
		sc.Port = "587"
	}
	return sc
}

func BuildStripeConfig(cfg *config.Config) StripeConfig {
	return StripeConfig{
		SecretKey:  cfg.GetString("stripe.secret_key"),
		Currency:   cfg.GetString("stripe.currency"),
		RefreshURL: cfg.GetString("stripe.refresh_url"),
		ReturnURL:  cfg.GetString("stripe.return_url"),
	}
}

func BuildMediaConfig(cfg *config.Config) MediaConfig {
	mc := MediaConfig{Root: cfg.GetString("media.root")}
	if mc.Root == "" {
		mc.Root = "./media"
	}
	return mc
}

func BuildTicketConfig(cfg *config.Config) TicketConfig {
	tc := TicketConfig{
		ScanGrace:  cfg.GetDuration("tickets.scan_grace"),
		PageSize:   cfg.GetInt("tickets.page_size"),
		ScanLimit:  cfg.GetInt("tickets.scan_limit"),
		ScanWindow: cfg.GetDuration("tickets.scan_window"),
	}
	if tc.ScanGrace == 0 {
		tc.ScanGrace = 2 * time.Second
	}
	if tc.PageSize == 0 {
		tc.PageSize = 6
	}
	if tc.ScanLimit == 0 {
		tc.ScanLimit = 30
	}
	if tc.ScanWindow == 0 {
		tc.ScanWindow = time.Minute
	}
	return tc
}
