package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/twmb/franz-go/pkg/kgo"

	authhandler "truetrace/internal/auth/handler"
	authservice "truetrace/internal/auth/service"
	"truetrace/internal/feedback"
	feedbackhandler "truetrace/internal/feedback/handler"
	feedbackstore "truetrace/internal/feedback/store"
	jwttoken "truetrace/internal/jwt_token"
	"truetrace/internal/ledger"
	ledgerhandler "truetrace/internal/ledger/handler"
	"truetrace/internal/ledger/hedera"
	"truetrace/internal/ledger/mirror"
	"truetrace/internal/ledger/topic"
	"truetrace/internal/minting"
	minthandler "truetrace/internal/minting/handler"
	mintstore "truetrace/internal/minting/store"
	"truetrace/internal/platform/config"
	"truetrace/internal/platform/httpserver"
	"truetrace/internal/platform/kafka"
	"truetrace/internal/platform/metrics"
	"truetrace/internal/platform/postgres"
	platformredis "truetrace/internal/platform/redis"
	"truetrace/internal/provisioning"
	qrhandler "truetrace/internal/qrcode/handler"
	qrmetrics "truetrace/internal/qrcode/metrics"
	qrservice "truetrace/internal/qrcode/service"
	qrstore "truetrace/internal/qrcode/store"
	httptransport "truetrace/internal/transport/http"
	"truetrace/internal/wallet"
	"truetrace/internal/wallet/bridge"
	"truetrace/internal/wallet/local"
	walletmetrics "truetrace/internal/wallet/metrics"
	walletstore "truetrace/internal/wallet/store"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/circuit"
)

// mirrorPartitions and mirrorReplication size the mirror topic when the
// server creates it.
const (
	mirrorPartitions  = 3
	mirrorReplication = 1
)

type application struct {
	router http.Handler
	checks map[string]httpserver.Check
	auth   *authservice.Service
	wallet *wallet.Manager

	closers []func() error
}

func (a *application) close(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("close failed", "error", err)
		}
	}
}

type stores struct {
	records  qrservice.Store
	feedback feedback.Store
	tokens   minting.Store
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*application, error) {
	app := &application{checks: make(map[string]httpserver.Check)}
	fail := func(err error) (*application, error) {
		app.close(log)
		return nil, err
	}

	db, err := openDatabase(ctx, cfg.Postgres, log)
	if err != nil {
		return fail(err)
	}
	st := newStores(db, log)
	if db != nil {
		app.closers = append(app.closers, db.Close)
		app.checks["postgres"] = db.PingContext
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	var sessions wallet.SessionStore = walletstore.NewInMemory()
	if redisClient != nil {
		app.closers = append(app.closers, redisClient.Close)
		app.checks["redis"] = redisClient.Health
		sessions = walletstore.NewRedis(redisClient.Client, walletstore.WithTTL(cfg.Wallet.SessionTTL))
		log.Info("wallet sessions stored in redis")
	} else {
		log.Info("wallet sessions kept in memory")
	}

	client, err := hedera.New(cfg.Hedera, log)
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, client.Close)

	registry, err := topic.NewRegistry(client, cfg.Hedera.TopicMemo, cfg.Hedera.TopicID, log)
	if err != nil {
		return fail(err)
	}
	topicID, err := registry.Bootstrap(ctx)
	if err != nil {
		return fail(fmt.Errorf("bootstrap topic: %w", err))
	}
	log.Info("event topic ready", "topic_id", topicID)

	keys := loadKeyRing(cfg.Hedera.AccountsFile, log)

	provider, err := walletProvider(cfg, client, log)
	if err != nil {
		return fail(err)
	}
	manager, err := wallet.NewManager(provider, sessions,
		wallet.WithPolicy(wallet.RelayPolicy{
			Endpoints:             cfg.Wallet.RelayURLs,
			MaxRetriesPerEndpoint: cfg.Wallet.MaxRetries,
			RetryDelay:            cfg.Wallet.RetryDelay,
		}),
		wallet.WithChain(cfg.Wallet.Chain),
		wallet.WithPairingTimeout(cfg.Wallet.PairingTimeout),
		wallet.WithLogger(log),
		wallet.WithMetrics(walletmetrics.New()),
	)
	if err != nil {
		return fail(err)
	}
	app.wallet = manager
	app.closers = append(app.closers, manager.Close)

	submitterOpts := []ledger.SubmitterOption{ledger.WithSubmitterLogger(log)}
	kafkaClient, err := kafka.New(cfg.Kafka)
	if err != nil {
		// mirroring is best effort
		log.Warn("event mirror disabled", "error", err)
	}
	if kafkaClient != nil {
		app.closers = append(app.closers, closeKafka(kafkaClient))
		if err := kafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka.Topic, mirrorPartitions, mirrorReplication); err != nil {
			log.Warn("mirror topic not ensured", "topic", cfg.Kafka.Topic, "error", err)
		}
		producer, err := mirror.New(kafkaClient, cfg.Kafka.Topic, cfg.Kafka.ClientID)
		if err != nil {
			return fail(err)
		}
		submitterOpts = append(submitterOpts,
			ledger.WithMirror(producer),
			ledger.WithBreaker(circuit.New("kafka-mirror")),
		)
		log.Info("event mirror enabled", "topic", cfg.Kafka.Topic)
	}
	submitter, err := ledger.NewSubmitter(client, manager, registry, submitterOpts...)
	if err != nil {
		return fail(err)
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	authSvc, err := authservice.New(manager, tokens, authservice.NewRoleTable(cfg.Auth.RoleMap),
		authservice.WithLogger(log),
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
	)
	if err != nil {
		return fail(err)
	}
	app.auth = authSvc

	qrSvc, err := qrservice.New(st.records, manager, submitter,
		qrservice.WithLogger(log),
		qrservice.WithMetrics(qrmetrics.New()),
	)
	if err != nil {
		return fail(err)
	}

	feedbackSvc, err := feedback.NewService(st.feedback, log)
	if err != nil {
		return fail(err)
	}

	mintOpts := []minting.Option{minting.WithLogger(log)}
	if keys != nil {
		mintOpts = append(mintOpts, minting.WithKeyResolver(keys))
	}
	mintSvc, err := minting.NewService(client, submitter, st.tokens, mintOpts...)
	if err != nil {
		return fail(err)
	}

	authH := authhandler.New(authSvc, log)
	qrH := qrhandler.New(qrSvc, log)
	feedbackH := feedbackhandler.New(feedbackSvc, log)
	mintH := minthandler.New(mintSvc, log)
	ledgerH := ledgerhandler.New(registry, client, log)

	app.router = httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        metrics.New(),
		Tokens:         jwttoken.NewJWTServiceAdapter(tokens),
		RequestTimeout: cfg.Server.WriteTimeout,
		Public:         []httptransport.Routes{authH.Register},
		Authenticated:  []httptransport.Routes{qrH.Register, feedbackH.Register, ledgerH.RegisterRecords},
		Manufacturer:   []httptransport.Routes{mintH.Register, ledgerH.RegisterTopics},
	})
	return app, nil
}

func openDatabase(ctx context.Context, cfg config.PostgresConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		log.Warn("DATABASE_URL not set, records are kept in memory")
		return nil, nil
	}
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func newStores(db *sql.DB, log *slog.Logger) stores {
	if db == nil {
		return stores{
			records:  qrstore.NewInMemoryStore(),
			feedback: feedbackstore.NewInMemoryStore(),
			tokens:   mintstore.NewInMemoryStore(),
		}
	}
	log.Info("records stored in postgres")
	return stores{
		records:  qrstore.NewPostgres(db),
		feedback: feedbackstore.NewPostgres(db),
		tokens:   mintstore.NewPostgres(db),
	}
}

// loadKeyRing returns nil when no accounts were provisioned, which disables
// carton association with downstream accounts.
func loadKeyRing(path string, log *slog.Logger) *provisioning.KeyRing {
	keys, err := provisioning.LoadKeyRing(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no provisioned accounts file", "path", path)
		} else {
			log.Warn("provisioned accounts not loaded", "path", path, "error", err)
		}
		return nil
	}
	log.Info("provisioned accounts loaded", "path", path, "count", keys.Len())
	return keys
}

func walletProvider(cfg config.Config, client *hedera.Client, log *slog.Logger) (wallet.Provider, error) {
	switch cfg.Wallet.Provider {
	case config.WalletProviderLocal:
		// role mapped accounts may log in through the local signer
		extra := make([]domain.AccountID, 0, len(cfg.Auth.RoleMap))
		for account := range cfg.Auth.RoleMap {
			extra = append(extra, account)
		}
		return local.NewProvider(client.SDK(), client.OperatorID(), client.OperatorKey(), extra, log), nil
	default:
		return bridge.NewProvider(cfg.Wallet.BridgeURL, cfg.Wallet.ProjectID, bridge.AppMetadata{
			Name:        cfg.Wallet.AppName,
			Description: cfg.Wallet.AppDescription,
			URL:         cfg.Wallet.AppURL,
			Icons:       []string{},
		}, bridge.WithLogger(log))
	}
}

func closeKafka(client *kgo.Client) func() error {
	return func() error {
		client.Close()
		return nil
	}
}
