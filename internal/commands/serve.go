package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/trace/internal/ai"
	"github.com/klabast/wb-services/trace/internal/app"
)

const shutdownTimeout = 10 * time.Second

var serveAccessLog bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveAccessLog, "access-log", true, "Write an access log line per request")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := boot(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auth, err := app.LoadAuth(rt.cfg.AuthFile)
	if err != nil {
		return err
	}

	opts := app.Options{
		Repo:        rt.store,
		Calendar:    rt.cal,
		Auth:        auth,
		MondayStart: rt.cfg.MondayStart(),
	}
	if serveAccessLog {
		opts.AccessLog = rt.log
	}

	model, err := rt.model(ctx)
	if err != nil {
		log.Printf("⚠️  AI disabled: %v", err)
	} else if model != nil {
		opts.Summarizer = &ai.Summarizer{Model: model}
		opts.Searcher = &ai.SmartSearch{Model: model}
	}

	srv := &http.Server{
		Addr:              rt.cfg.Addr(),
		Handler:           app.NewServer(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting trace on http://%s", displayAddr(rt.cfg.Host, rt.cfg.Port))
		log.Printf("Data directory: %s", rt.cfg.DataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("✅ Server stopped")
	return nil
}

func displayAddr(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, port)
}
