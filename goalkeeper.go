// Command goalkeeper
//
// GoalKeeper is a Slack slash-command service for tracking writing goals.
// It answers /goal and /score, keeps per-writer state and an append-only
// history log in a sheet-shaped store, and announces new goals on a channel
// webhook.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gobridge/goalkeeper/config"
	"github.com/gobridge/goalkeeper/handlers"
	"github.com/gobridge/goalkeeper/identity"
	"github.com/gobridge/goalkeeper/keeper"
	"github.com/gobridge/goalkeeper/store"
	"github.com/gobridge/goalkeeper/webhook"
	"github.com/gobridge/goalkeeper/worker"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load(*configPath)
	if err != nil {
		sugar.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	wb, err := store.Open(ctx, cfg.Store)
	if err != nil {
		sugar.Fatalf("opening store: %v", err)
	}

	tasks := worker.NewPool(sugar)
	tasks.Start()
	defer tasks.Stop()

	ids := identity.NewResolver(wb, cfg.Store.MainSheet, sugar)
	k := keeper.New(ids, webhook.New(), tasks, sugar, cfg.Slack.WebhookURL, cfg.Slack.FeedbackUser)
	srv := handlers.New(k, wb, cfg.Slack.Token, sugar)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sugar.Infow("listening", "addr", cfg.HTTP.Addr, "backend", cfg.Store.Backend)
	if err := httpSrv.ListenAndServe(); err != nil {
		sugar.Fatalf("server stopped: %v", err)
	}
}
