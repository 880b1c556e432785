package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/homophones/assets"
	"github.com/robalobadob/homophones/internal/auth"
	"github.com/robalobadob/homophones/internal/database"
	"github.com/robalobadob/homophones/internal/httpserver"
	"github.com/robalobadob/homophones/internal/puzzles"
	"github.com/robalobadob/homophones/internal/results"
	"github.com/robalobadob/homophones/internal/session"
	"github.com/robalobadob/homophones/internal/store"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}

	cat, err := puzzles.Load(cfg.PuzzlesFile)
	if err != nil {
		return err
	}
	fsys, err := assets.Migrations()
	if err != nil {
		return err
	}
	db, err := database.OpenMigrated(cfg.DBPath, fsys)
	if err != nil {
		return err
	}
	defer db.Close()

	rs := results.New(db)
	mgr := session.NewManager(store.NewSQLiteStore(db), cat, session.Options{
		GameOptions:      cfg.GameOptions(),
		StartingGems:     cfg.StartingGems,
		CompletionReward: cfg.CompletionGemReward,
		OnComplete:       results.Recorder(rs),
	})
	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Catalog:  cat,
		Sessions: mgr,
		Results:  rs,
		Auth:     auth.NewService(db, cfg.JWTSecret, time.Duration(cfg.JWTExpiresDays)*24*time.Hour),
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Int("challenges", cat.Len()).Str("db", cfg.DBPath).Msg("starting server")
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
