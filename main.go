// main.go
//
// Entry point for the Prompt Duel Go server.
// Wires env config, database, oracle backend, result store, analytics, and
// the HTTP server.
//
// Backend selection:
//   - OPENROUTER_API_KEY set → OpenRouter chat completions.
//   - GEMINI_API_KEY set     → Google Gemini.
//   - neither                → offline oracle (deterministic local play).
//
// Store selection:
//   - SUPABASE_URL + SUPABASE_KEY set → Supabase.
//   - otherwise                       → SQLite (DB_PATH, default ./data/app.db).

package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/promptduel/go-server/internal/analytics"
	"github.com/promptduel/go-server/internal/catalog"
	"github.com/promptduel/go-server/internal/httpserver"
	"github.com/promptduel/go-server/internal/oracle"
	"github.com/promptduel/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Oracle backend
	var client oracle.Client
	switch {
	case os.Getenv("OPENROUTER_API_KEY") != "":
		client = oracle.NewOpenRouter(os.Getenv("OPENROUTER_API_KEY"), getEnv("CLIENT_ORIGIN", "http://localhost:5173"))
		log.Info().Str("backend", "openrouter").Msg("oracle configured")
	case os.Getenv("GEMINI_API_KEY") != "":
		g, err := oracle.NewGemini(context.Background(), os.Getenv("GEMINI_API_KEY"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init gemini client")
		}
		client = g
		log.Info().Str("backend", "gemini").Msg("oracle configured")
	default:
		client = oracle.NewOffline(nil)
		log.Warn().Str("backend", "offline").Msg("no API key set; using offline oracle")
	}

	// Result store
	var st store.Store
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		sb, err := store.NewSupabase(url, os.Getenv("SUPABASE_KEY"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init supabase client")
		}
		st = sb
		log.Info().Str("store", "supabase").Msg("result store configured")
	} else {
		st = store.NewSQLite(db)
		log.Info().Str("store", "sqlite").Msg("result store configured")
	}

	tracker := analytics.Multi{
		analytics.NewLog(log.Logger),
		analytics.NewSQLite(db, log.Logger),
	}

	srv := httpserver.New(httpserver.Config{
		DB:      db,
		Store:   st,
		Oracle:  client,
		Catalog: catalog.Table{},
		Tracker: tracker,
	})
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
