package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CTAG07/chaintext/pkg/corpus"
)

// CorpusAPI holds the dependencies for the corpus library API handlers.
type CorpusAPI struct {
	store  *corpus.Store
	logger *slog.Logger
}

// NewCorpusAPI creates a new instance of the CorpusAPI.
func NewCorpusAPI(store *corpus.Store, logger *slog.Logger) *CorpusAPI {
	return &CorpusAPI{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/corpora endpoints.
func (c *CorpusAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/corpora", c.handleList)
	mux.HandleFunc("/api/corpora/", c.handleCorpusByName)
}

// CorpusSummary describes one stored corpus.
type CorpusSummary struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *CorpusAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	infos, err := c.store.List(r.Context())
	if err != nil {
		c.logger.Error("Failed to list corpora", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list corpora: %v", err))
		return
	}

	summaries := make([]CorpusSummary, 0, len(infos))
	for _, info := range infos {
		summaries = append(summaries, CorpusSummary{
			Name:      info.Name,
			SizeBytes: info.Size,
			CreatedAt: info.CreatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

// handleCorpusByName serves GET (content), POST (upload), and DELETE for a
// single named corpus.
func (c *CorpusAPI) handleCorpusByName(w http.ResponseWriter, r *http.Request) {
	trimmedPath := strings.TrimPrefix(r.URL.Path, "/api/corpora/")
	name := strings.TrimSuffix(trimmedPath, "/") // Handle optional trailing slash
	if name == "" || strings.Contains(name, "/") {
		respondWithError(w, http.StatusBadRequest, "Invalid corpus name in URL")
		return
	}

	switch r.Method {
	case http.MethodGet:
		c.getCorpus(w, r, name)
	case http.MethodPost:
		c.createCorpus(w, r, name)
	case http.MethodDelete:
		c.deleteCorpus(w, r, name)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (c *CorpusAPI) getCorpus(w http.ResponseWriter, r *http.Request, name string) {
	content, err := c.store.Content(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		c.logger.Error("Failed to read corpus", "corpus_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read corpus: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// createCorpus stores the raw request body under name. Uploads never
// overwrite; an existing name is a conflict.
func (c *CorpusAPI) createCorpus(w http.ResponseWriter, r *http.Request, name string) {
	_, err := c.store.Info(r.Context(), name)
	if err == nil {
		respondWithError(w, http.StatusConflict, fmt.Sprintf("Corpus %q already exists", name))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		c.logger.Error("Failed to check corpus", "corpus_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}

	info, err := c.store.Add(r.Context(), name, r.Body)
	if err != nil {
		c.logger.Error("Failed to store corpus", "corpus_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store corpus: %v", err))
		return
	}
	respondWithJSON(w, http.StatusCreated, CorpusSummary{
		Name:      info.Name,
		SizeBytes: info.Size,
		CreatedAt: info.CreatedAt,
	})
}

func (c *CorpusAPI) deleteCorpus(w http.ResponseWriter, r *http.Request, name string) {
	info, err := c.store.Info(r.Context(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Corpus not found")
			return
		}
		c.logger.Error("Failed to check corpus", "corpus_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}

	if err = c.store.Remove(r.Context(), info); err != nil {
		c.logger.Error("Failed to remove corpus", "corpus_name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to remove corpus: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
