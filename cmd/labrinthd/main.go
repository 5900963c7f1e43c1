// Copyright (c) 2026 Modrinth Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command labrinthd starts the registry's HTTP API: it parses process
// configuration, wires up Postgres, Redis, the search index and the OAuth
// flow manager, and serves until an interrupt or SIGTERM, the same
// startup/shutdown shape the teacher's root main.go uses for its own
// backend.StartServer call.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modrinth/labrinth-go/internal/apiserver"
	"github.com/modrinth/labrinth-go/internal/auth"
	"github.com/modrinth/labrinth-go/internal/cache"
	"github.com/modrinth/labrinth-go/internal/config"
	"github.com/modrinth/labrinth-go/internal/db"
	"github.com/modrinth/labrinth-go/internal/oauthflow"
	"github.com/modrinth/labrinth-go/internal/search"
)

func main() {
	cfg := config.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("labrinthd: connect to database: %v", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("labrinthd: parse redis url: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	fabric := cache.New(rdb)

	meiliCtx, meiliCancel := context.WithTimeout(context.Background(), 30*time.Second)
	index, err := search.NewIndex(meiliCtx, cfg.MeilisearchAddr, cfg.MeilisearchKey, "projects")
	meiliCancel()
	if err != nil {
		log.Fatalf("labrinthd: connect to search index: %v", err)
	}

	authManager := auth.NewManager(pool, fabric, cfg.SessionJWTSecret)
	oauthManager := oauthflow.NewManager(cfg.SiteURL,
		oauthflow.ProviderCredentials{ClientID: cfg.GitHub.ClientID, ClientSecret: cfg.GitHub.ClientSecret},
		oauthflow.ProviderCredentials{ClientID: cfg.Discord.ClientID, ClientSecret: cfg.Discord.ClientSecret},
		oauthflow.ProviderCredentials{ClientID: cfg.Microsoft.ClientID, ClientSecret: cfg.Microsoft.ClientSecret},
	)

	handler := apiserver.NewHandler(&apiserver.App{
		Pool:   pool,
		Cache:  fabric,
		Auth:   authManager,
		Search: index,
		OAuth:  oauthManager,
		Config: cfg,
	})

	server := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("labrinthd: listening on %s", cfg.BindAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("labrinthd: serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("labrinthd: shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("labrinthd: shutdown error: %v", err)
	} else {
		log.Println("labrinthd: gracefully stopped.")
	}
}
