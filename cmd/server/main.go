package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"video-rag/internal/api"
	"video-rag/internal/chromemdb"
	"video-rag/internal/config"
	"video-rag/internal/embedding"
	"video-rag/internal/helper"
	"video-rag/internal/llmservice"
	"video-rag/internal/mindmap"
	"video-rag/internal/rag"
	"video-rag/internal/session"
	"video-rag/internal/transcript"
)

const sweepInterval = time.Minute

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load(".env")

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	dumpConfig := flag.Bool("dump-config", false, "Print the resolved config and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if *dumpConfig {
		helper.PrettyPrint(cfg)
		return
	}

	for _, dir := range []string{cfg.RAG.VectorStoresDir, cfg.Infographic.OutputDir, cfg.Server.StaticDir} {
		if err := helper.CreateFolder(dir); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Error creating folder")
		}
	}

	embedder, err := embedding.NewFromConfig(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store := chromemdb.NewManager(&cfg.RAG, embedder)
	engine := rag.NewEngine(llmservice.NewClient(&cfg.LLM), &cfg.RAG)
	transcripts := transcript.NewClient()
	mindmaps := mindmap.NewGenerator(&cfg.Mindmap)

	sessions := session.NewManager(
		time.Duration(cfg.Server.SessionTTLMinutes)*time.Minute,
		func(sessionID string) {
			if err := store.Delete(sessionID); err != nil {
				log.Error().Err(err).Str("session_id", sessionID).Msg("Error deleting vector store")
			}
		},
	)
	sessions.StartSweeper(context.Background(), sweepInterval)

	srv := api.NewServer(cfg, sessions, store, engine, transcripts, mindmaps)

	log.Info().Str("addr", cfg.Server.Addr).Msg("video-rag listening")
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Routes()); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
