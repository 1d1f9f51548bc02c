package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/api"
	"github.com/abhisek/brightpath/internal/course"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		pub, err := d.publisher()
		if err != nil {
			return err
		}

		var planner *course.Planner
		planner, err = d.planner(ctx)
		switch {
		case errors.Is(err, errLLMDisabled):
			logger.Warn("course planning disabled", "reason", err)
		case err != nil:
			return err
		}

		h := api.New(d.quizService(pub), d.records, d.events, planner, logger)
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.NewRouter(h, cfg.HTTP.AllowedOrigins...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.HTTP.Addr, "store", cfg.Store.Backend)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (overrides BRIGHTPATH_HTTP_ADDR)")
}
