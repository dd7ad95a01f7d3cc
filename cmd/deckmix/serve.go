package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/api"
	"github.com/satindergrewal/deckmix/internal/clock"
	"github.com/satindergrewal/deckmix/internal/config"
	"github.com/satindergrewal/deckmix/internal/console"
	"github.com/satindergrewal/deckmix/internal/deck"
	"github.com/satindergrewal/deckmix/internal/decode"
	"github.com/satindergrewal/deckmix/internal/library"
	"github.com/satindergrewal/deckmix/internal/logger"
	"github.com/satindergrewal/deckmix/internal/mixer"
	"github.com/satindergrewal/deckmix/internal/output"
	"github.com/satindergrewal/deckmix/internal/queue"
	"github.com/satindergrewal/deckmix/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decks, the mixer and the HTTP control API",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "HTTP port (overrides DECKMIX_PORT)")
	cmd.Flags().String("music-dir", "", "directory to load into the library (overrides DECKMIX_MUSIC_DIR)")
	cmd.Flags().String("output", "", "stream or speaker (overrides DECKMIX_OUTPUT)")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetString("music-dir"); v != "" {
		cfg.MusicDir = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Output = v
	}
}

func newDecoder(cfg config.Config) decode.Decoder {
	return decode.Chain{
		decode.NewBeepDecoder(cfg.ResampleQuality),
		decode.NewFFmpegDecoder(cfg.FFmpegPath),
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	balance, err := deck.ParseBalanceMode(cfg.BalanceMode)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("deckmix starting up",
		zap.String("output", cfg.Output),
		zap.String("music_dir", cfg.MusicDir),
		zap.Stringer("balance_mode", balance))

	dec := newDecoder(cfg)
	lib := library.New(dec, log.Named("library"))
	if cfg.MusicDir != "" {
		paths, err := library.ScanDir(cfg.MusicDir, decode.IsAudioFile)
		if err != nil {
			return err
		}
		lib.IngestAll(paths)
		log.Info("library loaded", zap.Int("tracks", lib.Len()))
	}
	if cfg.WatchEnabled() {
		w, err := library.NewWatcher(lib, cfg.MusicDir, decode.IsAudioFile, log.Named("watcher"))
		if err != nil {
			log.Warn("music dir watcher disabled", zap.Error(err))
		} else {
			defer w.Close()
			go w.Run(ctx)
		}
	}

	opts := deck.Options{ResampleQuality: cfg.ResampleQuality, BalanceMode: balance}
	left := deck.New(queue.Left.String(), dec, opts, log.Named("deck.left"))
	right := deck.New(queue.Right.String(), dec, opts, log.Named("deck.right"))
	mix := mixer.New(left, right)

	con := console.New(lib, queue.New(), left, right, log.Named("console"))
	clk := clock.New(cfg.ClockInterval, log.Named("clock"), left, right)
	go clk.Run(ctx)

	broadcaster := stream.NewBroadcaster(log.Named("broadcast"))
	webrtcHandler := stream.NewWebRTCHandler(broadcaster, cfg.OpusBitrate, log.Named("webrtc"))
	listeners := func() int { return broadcaster.ListenerCount() + webrtcHandler.PeerCount() }

	srv := api.New(con, clk, listeners, log.Named("api"))

	switch cfg.Output {
	case config.OutputSpeaker:
		spk := output.NewSpeaker(cfg.SpeakerBuffer, log.Named("speaker"))
		go func() {
			if err := spk.Run(ctx, mix); err != nil {
				log.Error("speaker output failed", zap.Error(err))
				cancel()
			}
		}()
	default:
		pump := output.NewPump(mix, log.Named("pump"))
		go pump.Run(ctx)
		go broadcaster.Run(ctx, pump.Frames())

		srv.Mount("/stream", stream.NewHTTPHandler(broadcaster, stream.HTTPOptions{
			FFmpegPath: cfg.FFmpegPath,
			Bitrate:    cfg.MP3Bitrate,
		}, log.Named("http-stream")))
		srv.Mount("/offer", webrtcHandler)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("deckmix live", zap.String("addr", addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
