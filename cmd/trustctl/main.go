package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/ivankudzin/trustengine/internal/app/wiring"
	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/infra/logger"
	"github.com/ivankudzin/trustengine/internal/repo/postgres"
	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
)

func main() {
	app := cli.NewApp()
	app.Name = "trustctl"
	app.Usage = "operator tooling for the trust engine"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Value:   "configs/config.yaml",
			EnvVars: []string{"APP_CONFIG"},
		},
	}
	app.Commands = []*cli.Command{
		migrateCmd,
		tokenCmd,
		analyzeCmd,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cctx *cli.Context) (config.Config, error) {
	return config.Load(cctx.String("config"))
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "apply postgres migrations",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return fmt.Errorf("postgres dsn is not configured")
		}

		log, err := logger.New(cfg.Log.Level, "trustctl")
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		return postgres.Migrate(cctx.Context, cfg.Postgres.DSN, log)
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "mint an access token for a reviewer",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "subject", Required: true},
		&cli.StringFlag{Name: "role", Value: authsvc.RoleModerator},
		&cli.DurationFlag{Name: "ttl", Value: time.Hour},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}

		manager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cctx.Duration("ttl"))
		token, expiresAt, err := manager.GenerateAccessToken(cctx.String("subject"), strings.ToUpper(cctx.String("role")))
		if err != nil {
			return err
		}

		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

var analyzeCmd = &cli.Command{
	Name:      "analyze",
	Usage:     "score text against the configured pattern file",
	ArgsUsage: "<text>",
	Action: func(cctx *cli.Context) error {
		text := strings.Join(cctx.Args().Slice(), " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("text is required")
		}

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Log.Level, "trustctl")
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		cfg.Analyzer.Watch = false
		a, _, err := wiring.NewAnalyzer(cfg.Analyzer, nil, log)
		if err != nil {
			return err
		}

		out, err := a.Analyze(cctx.Context, model.ContentItem{Text: text})
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}
