package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yigit/footlink/internal/bootstrap"
	"github.com/yigit/footlink/internal/config"
	"github.com/yigit/footlink/internal/pkg/logger"
	"github.com/yigit/footlink/internal/seed"
	"github.com/yigit/footlink/internal/server"
)

// @title FootLink API
// @version 1.0
// @description API for FootLink, the professional network for football players, scouts and clubs
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@footlink.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "configs/config.yaml",
		Usage:   "path to the YAML configuration file",
		EnvVars: []string{"FOOTLINK_CONFIG"},
	}

	return &cli.App{
		Name:   "footlink",
		Usage:  "FootLink API server",
		Flags:  []cli.Flag{configFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:        "serve",
				Usage:       "Start the HTTP API",
				Action:      serve,
				Category:    "Api",
				Description: `Starts the REST API and the websocket endpoint on server.port.`,
			},
			{
				Name:        "migrate",
				Usage:       "Apply database migrations",
				Action:      migrate,
				Category:    "Database",
				Description: `Applies every pending SQL file in database.migrations_dir. Requires storage.driver=postgres.`,
			},
			{
				Name:        "seed",
				Usage:       "Load sample data",
				Action:      seedData,
				Category:    "Database",
				Description: `Creates sample players, posts, opportunities and events unless they already exist.`,
			},
		},
	}
}

func serve(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	srv, err := server.NewServer(c.Context, cfg, lgr)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(); err != nil {
		return err
	}
	lgr.Info().Msg("Application finished gracefully.")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		return errors.New("migrate requires storage.driver=postgres")
	}

	pg, err := bootstrap.ConnectDatabase(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer pg.Close()

	return bootstrap.RunMigrations(c.Context, cfg, pg, lgr)
}

func seedData(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()

	repos, err := bootstrap.SetupStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer repos.Shutdown()

	return seed.Run(ctx, repos, time.Now().UTC(), lgr)
}
