// Command seed loads the neighborhood catalogue and, optionally, demo content.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"vecinu/internal/config"
	"vecinu/internal/database"
	"vecinu/internal/middleware"
	"vecinu/internal/repository"
	"vecinu/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of demo residents to create")
	numPosts := flag.Int("posts", 200, "Number of demo posts to create")
	comments := flag.Int("comments", 4, "Maximum comments per demo post")
	shouldClean := flag.Bool("clean", false, "Remove existing content and demo accounts before seeding")
	demo := flag.Bool("demo", true, "Create demo residents, posts and comments")
	preset := flag.String("preset", "", "Use a named demo size (minimal, default, busy); overrides -users/-posts/-comments")
	dryRun := flag.Bool("dry-run", false, "Generate demo content without writing it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("load configuration", err)
	}
	middleware.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() && *demo {
		fatal("refusing demo seed", errProductionDemo)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fatal("connect database", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := seed.Neighborhoods(ctx, repository.NewNeighborhoodRepository(db), seed.Catalogue()); err != nil {
		fatal("seed neighborhoods", err)
	}
	if !*demo {
		return
	}

	opts := seed.Options{NumUsers: *numUsers, NumPosts: *numPosts, CommentsPerPost: *comments}
	if *preset != "" {
		if opts, err = seed.Preset(*preset); err != nil {
			fatal("select preset", err)
		}
	}
	opts.ShouldClean = *shouldClean
	opts.DryRun = *dryRun

	res, err := seed.Demo(ctx, db, opts)
	if err != nil {
		fatal("seed demo content", err)
	}
	middleware.Logger.Info("seeding finished",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.String("password", seed.DemoPassword),
	)
}

var errProductionDemo = errors.New("demo content is not allowed in production")

func fatal(step string, err error) {
	middleware.Logger.Error("seed failed", slog.String("step", step), slog.String("error", err.Error()))
	os.Exit(1)
}
