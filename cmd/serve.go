package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kimsuncheol/voca-ingest/internal/ingest"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for ingestion requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			servePort = cfg.Server.Port
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", servePort),
			Handler:           newServeMux(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("serve: listening", zap.Int("port", servePort))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

// newServeMux builds the webhook routes over a wired env.
func newServeMux(env *env) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /webhook/ingest", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Course    string     `json:"course"`
			Day       int        `json:"day"`
			Grid      [][]string `json:"grid"`
			CSV       string     `json:"csv"`
			Overwrite bool       `json:"overwrite"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Course == "" || req.Day <= 0 {
			http.Error(w, `{"error":"course and day are required"}`, http.StatusBadRequest)
			return
		}

		var src ingest.Source
		var err error
		switch {
		case len(req.Grid) > 0:
			src, err = ingest.SourceFromGrid(req.Grid, nil)
		case req.CSV != "":
			src, err = ingest.SourceFromDelimited([]byte(req.CSV))
		default:
			http.Error(w, `{"error":"grid or csv is required"}`, http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}

		// The request's overwrite field stands in for the interactive
		// confirmation collaborator.
		confirm := func(context.Context, ingest.Conflict, string) (bool, error) {
			return req.Overwrite, nil
		}

		outcome, err := env.Pipeline.Ingest(r.Context(), req.Course, req.Day, src, confirm)
		if err != nil {
			zap.L().Error("webhook ingestion failed",
				zap.String("course", req.Course),
				zap.Int("day", req.Day),
				zap.Error(err),
			)
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(outcome)
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "server port")
	rootCmd.AddCommand(serveCmd)
}
