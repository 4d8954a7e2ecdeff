// Command truetrace-provision prepares a network and database for the
// server: it creates topics, provisions the downstream supply chain accounts
// and applies schema migrations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"truetrace/internal/ledger"
	"truetrace/internal/ledger/hedera"
	"truetrace/internal/ledger/mirror"
	"truetrace/internal/ledger/topic"
	"truetrace/internal/platform/config"
	"truetrace/internal/platform/kafka"
	"truetrace/internal/platform/logger"
	"truetrace/internal/platform/postgres"
	"truetrace/internal/provisioning"
)

var (
	logJSONFlag = &cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	}
	logDebugFlag = &cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	}
	topicFlag = &cli.StringFlag{
		Name:    "topic",
		Usage:   "topic the account events are logged to",
		EnvVars: []string{"HEDERA_TOPIC_ID"},
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Value:   "accounts.json",
		Usage:   "file the account keys are written to",
		EnvVars: []string{"HEDERA_ACCOUNTS_FILE"},
	}
	memoFlag = &cli.StringFlag{
		Name:    "memo",
		Value:   topic.DefaultMemo,
		Usage:   "memo of the created topic",
		EnvVars: []string{"HEDERA_TOPIC_MEMO"},
	}
	manufacturerFlag = &cli.StringFlag{
		Name:  "manufacturer",
		Usage: "account id prepended to the printed ROLE_MAP as Manufacturer, defaults to the operator",
	}
)

func main() {
	app := &cli.App{
		Name:  "truetrace-provision",
		Usage: "Provision topics, accounts and schema for truetrace",
		Flags: []cli.Flag{logJSONFlag, logDebugFlag},
		Commands: []*cli.Command{
			{
				Name:   "create-accounts",
				Usage:  "create and fund the Wholesaler, Retailer and Consumer accounts",
				Flags:  []cli.Flag{topicFlag, outFlag, manufacturerFlag},
				Action: createAccounts,
			},
			{
				Name:   "create-topic",
				Usage:  "create an event topic with the operator as submit key",
				Flags:  []cli.Flag{memoFlag},
				Action: createTopic,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: migrate,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(cCtx *cli.Context) (config.Tooling, *slog.Logger, error) {
	cfg, err := config.LoadTooling()
	if err != nil {
		return config.Tooling{}, nil, err
	}
	opts := logger.FromConfig(cfg.Log, "truetrace-provision")
	if cCtx.IsSet(logJSONFlag.Name) {
		opts.JSON = cCtx.Bool(logJSONFlag.Name)
	}
	if cCtx.Bool(logDebugFlag.Name) {
		opts.Level = "debug"
	}
	return cfg, logger.New(opts), nil
}

func createAccounts(cCtx *cli.Context) error {
	cfg, l, err := setup(cCtx)
	if err != nil {
		return err
	}
	topicID := cCtx.String(topicFlag.Name)
	if topicID == "" {
		return errors.New("--topic or HEDERA_TOPIC_ID is required")
	}

	client, err := hedera.New(cfg.Hedera, l)
	if err != nil {
		return err
	}
	defer client.Close()

	events, closeEvents, err := newEventSubmitter(cfg, client, topicID, l)
	if err != nil {
		return err
	}
	defer closeEvents()

	p, err := provisioning.New(client, events, l)
	if err != nil {
		return err
	}
	l.Info("starting account creation and funding", "topic_id", topicID)
	accounts, createErr := p.CreateAccounts(cCtx.Context, provisioning.DefaultUsers)
	// keys of accounts created before a failure are still written
	if len(accounts) > 0 {
		if err := writeAccountsFile(cCtx.String(outFlag.Name), accounts); err != nil {
			return errors.Join(createErr, err)
		}
		l.Info("saved account details", "path", cCtx.String(outFlag.Name), "count", len(accounts))
	}
	if createErr != nil {
		return createErr
	}

	manufacturer := cCtx.String(manufacturerFlag.Name)
	if manufacturer == "" {
		manufacturer = string(client.OperatorID())
	}
	fmt.Println(provisioning.RoleMapLine(manufacturer+"=Manufacturer", accounts))
	return nil
}

// newEventSubmitter submits operator paid events to topicID and mirrors them
// to Kafka when brokers are configured.
func newEventSubmitter(cfg config.Tooling, client *hedera.Client, topicID string, l *slog.Logger) (*ledger.Submitter, func(), error) {
	registry, err := topic.NewRegistry(client, cfg.Hedera.TopicMemo, topicID, l)
	if err != nil {
		return nil, nil, err
	}
	opts := []ledger.SubmitterOption{ledger.WithSubmitterLogger(l)}
	closeFn := func() {}

	kafkaClient, err := kafka.New(cfg.Kafka)
	if err != nil {
		l.Warn("event mirror disabled", "error", err)
	}
	if kafkaClient != nil {
		closeFn = kafkaClient.Close
		producer, err := mirror.New(kafkaClient, cfg.Kafka.Topic, cfg.Kafka.ClientID)
		if err != nil {
			kafkaClient.Close()
			return nil, nil, err
		}
		opts = append(opts, ledger.WithMirror(producer))
	}

	// no wallet: provisioning only submits operator paid events
	submitter, err := ledger.NewSubmitter(client, nil, registry, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return submitter, closeFn, nil
}

func writeAccountsFile(path string, accounts []provisioning.Account) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create accounts file: %w", err)
	}
	if err := provisioning.WriteAccounts(f, accounts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func createTopic(cCtx *cli.Context) error {
	cfg, l, err := setup(cCtx)
	if err != nil {
		return err
	}
	client, err := hedera.New(cfg.Hedera, l)
	if err != nil {
		return err
	}
	defer client.Close()

	registry, err := topic.NewRegistry(client, cCtx.String(memoFlag.Name), "", l)
	if err != nil {
		return err
	}
	id, err := registry.Create(cCtx.Context)
	if err != nil {
		return err
	}
	fmt.Printf("HEDERA_TOPIC_ID=%s\n", id)
	return nil
}

func migrate(cCtx *cli.Context) error {
	cfg, l, err := setup(cCtx)
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	db, err := postgres.Open(cCtx.Context, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(db, l); err != nil {
		return err
	}
	l.Info("migrations applied")
	return nil
}
