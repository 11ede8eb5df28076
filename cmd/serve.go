package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aviv-k/pr-analytics/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the dashboard and generated data files over HTTP",
	Long: `Serves the embedded static dashboard together with the generated data
directory. The dashboard fetches the tabular file and metadata from
/data/ and derives all aggregates client-side; this command only hosts
the files.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger, err := newLogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		addr, _ := cmd.Flags().GetString("addr")
		dataDir, _ := cmd.Flags().GetString("data")

		staticFS, err := fs.Sub(web.Static, "static")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load embedded dashboard: %v\n", err)
			os.Exit(1)
		}

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		r.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(dataDir))))
		r.Handle("/*", http.FileServer(http.FS(staticFS)))

		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			logger.Info("serving dashboard",
				zap.String("addr", addr), zap.String("data", dataDir))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if err := eg.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("data", "data", "Directory holding the generated data files")
}
