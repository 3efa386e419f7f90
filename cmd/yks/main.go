package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yks-app/yks-go/internal/cli"
	"github.com/yks-app/yks-go/internal/infra/config"
	"github.com/yks-app/yks-go/internal/infra/logging"
	"github.com/yks-app/yks-go/internal/repo/object"
	"github.com/yks-app/yks-go/internal/repo/token"
	"github.com/yks-app/yks-go/internal/svc/apiclient"
	"github.com/yks-app/yks-go/internal/svc/sessionsvc"
	"github.com/yks-app/yks-go/internal/svc/uploadsvc"
)

const appName = "yks"

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig              `envPrefix:"LOG_"`
	API     apiclient.ClientConfig            `envPrefix:"API_"`
	Tokens  token.SQLiteTokenRepositoryConfig `envPrefix:"TOKEN_"`
	Upload  uploadsvc.UploadConfig            `envPrefix:"UPLOAD_"`
	Storage StorageConfig                     `envPrefix:"STORAGE_"`
	Poll    sessionsvc.PollerConfig           `envPrefix:"POLL_"`
}

// StorageConfig selects and configures the object store backend.
type StorageConfig struct {
	// Backend is "http" for the hosted store or "filesystem" for local use
	Backend string `env:"BACKEND" default:"http"`

	HTTP object.HTTPStoreConfig       `envPrefix:"HTTP_"`
	FS   object.FileSystemStoreConfig `envPrefix:"FS_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()
	)

	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	if err := config.Parse(ctx, &cfg, strings.ToUpper(appName)); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, appName)

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.yks")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.DebugContext(ctx, "done")
		}
	}()

	tokens, err := token.NewSQLiteTokenRepository(cfg.Tokens)
	if err != nil {
		return fmt.Errorf("new token repo: %w", err)
	}
	defer tokens.Close()

	store, err := newObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("new object store: %w", err)
	}

	app := &cli.App{
		Session: sessionsvc.New(tokens),
		Client:  apiclient.New(cfg.API, tokens, nil),
		Uploads: uploadsvc.NewUploadService(store, cfg.Upload),
		Tokens:  tokens,
		Poll:    cfg.Poll,
	}

	if err := cli.Execute(ctx, app); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	return nil
}

func newObjectStore(cfg StorageConfig) (object.Store, error) {
	switch cfg.Backend {
	case "filesystem":
		return object.FileSystemStoreFactory(cfg.FS)()
	default:
		return object.HTTPStoreFactory(cfg.HTTP)()
	}
}
