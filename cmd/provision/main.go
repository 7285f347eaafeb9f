// Command provision runs one-off setup against the database: creating the
// admin account and building indexes. The API server never does either.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"codecamp/internal/app/service"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/config"
	"codecamp/internal/platform/database"
	"codecamp/internal/platform/logger"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "provision"
	app.Usage = "one-off setup tasks for the codecamp database"
	app.Before = func(*cli.Context) error {
		config.Load()
		cfg := config.AppConfig
		return logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: cfg.LogOutput})
	}
	app.Commands = []cli.Command{
		{
			Name:  "admin",
			Usage: "create the admin account, or promote an existing user with that email",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "username", EnvVar: "ADMIN_USERNAME", Value: "admin"},
				cli.StringFlag{Name: "email", EnvVar: "ADMIN_EMAIL"},
				cli.StringFlag{Name: "password", EnvVar: "ADMIN_PASSWORD"},
			},
			Action: provisionAdmin,
		},
		{
			Name:   "indexes",
			Usage:  "create collection indexes",
			Action: ensureIndexes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "provision failed: %v\n", err)
		os.Exit(1)
	}
}

func provisionAdmin(c *cli.Context) error {
	if c.String("email") == "" || c.String("password") == "" {
		return cli.NewExitError("--email and --password (or ADMIN_EMAIL / ADMIN_PASSWORD) are required", 2)
	}
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auth := service.NewAuthService(repository.NewMongoUserRepository(database.DB))
	result, err := auth.ProvisionAdmin(ctx, service.SignupRequest{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("admin %s: %s\n", c.String("email"), result)
	return nil
}

func ensureIndexes(*cli.Context) error {
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, database.DB); err != nil {
		return err
	}
	fmt.Println("indexes ensured")
	return nil
}
