package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/chaintext/pkg/corpus"
	"github.com/CTAG07/chaintext/pkg/tokenizer"
)

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server wires the API handlers onto a single mux.
type Server struct {
	modelAPI  *ModelAPI
	corpusAPI *CorpusAPI
	mux       *http.ServeMux
}

// NewServer creates the Server and registers all routes on its mux.
func NewServer(modelAPI *ModelAPI, corpusAPI *CorpusAPI) *Server {
	server := &Server{
		modelAPI:  modelAPI,
		corpusAPI: corpusAPI,
		mux:       http.NewServeMux(),
	}

	server.modelAPI.RegisterRoutes(server.mux)
	server.corpusAPI.RegisterRoutes(server.mux)
	server.mux.HandleFunc("/api/health", server.handleHealth)
	server.mux.HandleFunc("/api/version", server.handleVersion)

	return server
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion returns the application's build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// runServe trains the configured models once at startup and serves them over
// the HTTP API until SIGINT or SIGTERM. Without a selected corpus only the
// corpus library endpoints are useful; the model endpoints report not found.
func runServe(config *Config, logger *slog.Logger, store *corpus.Store, inputPath, corpusName string) error {
	text, source, err := loadCorpusText(store, inputPath, corpusName, false)
	if err != nil {
		return err
	}

	models := make(map[string]*runModel, len(config.Report.Runs))
	if text == "" {
		logger.Warn("No corpus selected, serving the corpus API only")
	} else {
		logger.Info("Corpus loaded", "source", source, "size_bytes", len(text))
		normalized := tokenizer.Normalize(text)
		for _, run := range config.Report.Runs {
			rm, err := buildRunModel(run, normalized, logger)
			if err != nil {
				return err
			}
			if _, ok := models[rm.run.Name]; ok {
				return fmt.Errorf("duplicate run name %q", rm.run.Name)
			}
			models[rm.run.Name] = rm
		}
	}

	server := NewServer(NewModelAPI(models, logger), NewCorpusAPI(store, logger))
	httpServer := &http.Server{Addr: config.Server.ApiAddr, Handler: server.mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting api server", "address", httpServer.Addr, "models", len(models))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("api server failed: %w", err)
	case sig := <-signalChan:
		logger.Info("OS signal received, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown failed: %w", err)
	}
	logger.Info("HTTP server stopped.")
	return nil
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
