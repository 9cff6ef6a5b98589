package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	ttsrouter "github.com/TTS-AGI/tts-router-v2"
	"github.com/TTS-AGI/tts-router-v2/internal/config"
	"github.com/TTS-AGI/tts-router-v2/internal/observability"
	"github.com/TTS-AGI/tts-router-v2/internal/provider"
	"github.com/TTS-AGI/tts-router-v2/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before the logger exists.
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogPretty)
	build := ttsrouter.GetVersionInfo()
	logger.Info().
		Str("version", build.Version).
		Str("commit", build.GitCommit).
		Str("go", build.GoVersion).
		Str("port", cfg.Port).
		Str("ffmpeg", cfg.FFmpegPath).
		Int64("max_concurrent_codecs", cfg.MaxConcurrentCodecs).
		Msg("tts-router starting")

	ff := ttsrouter.NewFFmpegCodec(cfg.FFmpegPath, cfg.CodecTimeout(), logger)
	pipe := ttsrouter.New(ff,
		ttsrouter.WithMaxConcurrent(cfg.MaxConcurrentCodecs),
		ttsrouter.WithLogger(logger),
	)

	// Register only the providers whose credentials are configured.
	var providers []provider.Provider
	if cfg.ElevenLabsAPIKey != "" {
		providers = append(providers, provider.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, logger))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, provider.NewOpenAI(cfg.OpenAIAPIKey, logger))
	}
	registry := provider.NewRegistry(providers...)
	if registry.Len() == 0 {
		logger.Warn().Msg("no provider credentials configured; /tts will reject all requests")
	} else {
		logger.Info().Strs("providers", registry.Names()).Msg("providers registered")
	}

	mux := http.NewServeMux()
	server.New(registry, pipe, logger).Register(mux)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
		logger.Info().Msg("prometheus metrics enabled at /metrics")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
