package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/CTAG07/chaintext/pkg/markov"
	"github.com/CTAG07/chaintext/pkg/tokenizer"
)

// maxGenerateLength caps a single API generation request.
const maxGenerateLength = 4096

// ModelAPI holds the models trained at startup. The map is read-only after
// startup, so handlers access it without locking.
type ModelAPI struct {
	models map[string]*runModel
	logger *slog.Logger
}

// NewModelAPI creates a new instance of the ModelAPI.
func NewModelAPI(models map[string]*runModel, logger *slog.Logger) *ModelAPI {
	return &ModelAPI{
		models: models,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all model endpoints.
func (a *ModelAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/models", a.handleListModels)
	mux.HandleFunc("/api/generate", a.handleGenerate)
	mux.HandleFunc("/api/probability", a.handleProbability)
}

// ModelSummary describes one served model.
type ModelSummary struct {
	Name         string `json:"name"`
	Level        string `json:"level"`
	Order        int    `json:"order"`
	States       int    `json:"states"`
	Transitions  int    `json:"transitions"`
	Observations int    `json:"observations"`
	VocabSize    int    `json:"vocab_size"`
}

// GenerateRequest selects a model and optionally overrides its configured
// generation length and seed text.
type GenerateRequest struct {
	Model  string `json:"model"`
	Length int    `json:"length"`
	Seed   string `json:"seed"`
}

// GenerateResponse carries one generated sequence, as tokens and as text.
type GenerateResponse struct {
	Model  string   `json:"model"`
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
}

// ProbabilityRequest asks how likely Next is to follow State in a model.
type ProbabilityRequest struct {
	Model string   `json:"model"`
	State []string `json:"state"`
	Next  string   `json:"next"`
}

// ProbabilityResponse echoes the probe and adds the model's answer. The
// transitions map lists every observed continuation of the state with its
// count; it is omitted when the state was never observed.
type ProbabilityResponse struct {
	Model       string         `json:"model"`
	State       []string       `json:"state"`
	Next        string         `json:"next"`
	Probability float64        `json:"probability"`
	Transitions map[string]int `json:"transitions,omitempty"`
}

func (a *ModelAPI) handleListModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summaries := make([]ModelSummary, 0, len(a.models))
	for name, rm := range a.models {
		stats := rm.model.Stats()
		summaries = append(summaries, ModelSummary{
			Name:         name,
			Level:        string(rm.level),
			Order:        stats.Order,
			States:       stats.States,
			Transitions:  stats.Transitions,
			Observations: stats.Observations,
			VocabSize:    stats.VocabSize,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	respondWithJSON(w, http.StatusOK, summaries)
}

// lookupModel resolves the model named in a request body, writing the error
// response itself when the name is empty or unknown.
func (a *ModelAPI) lookupModel(w http.ResponseWriter, name string) (*runModel, bool) {
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'model' field")
		return nil, false
	}
	rm, ok := a.models[name]
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Model %q is not being served", name))
		return nil, false
	}
	return rm, true
}

// handleGenerate runs one generation pass. An empty seed starts from the head
// of the training corpus; a custom seed is normalized and tokenized at the
// model's level and must contain at least order tokens.
func (a *ModelAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	rm, ok := a.lookupModel(w, req.Model)
	if !ok {
		return
	}

	length := req.Length
	if length <= 0 {
		length = rm.run.GenerateLength
	}
	if length > maxGenerateLength {
		respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Length must be at most %d tokens", maxGenerateLength))
		return
	}

	var (
		prefix []string
		state  markov.State
	)
	if req.Seed == "" {
		var err error
		prefix, state, err = rm.seedWindow()
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	} else {
		tokens := rm.tok.Tokens(tokenizer.Normalize(req.Seed))
		if len(tokens) < rm.run.Order {
			respondWithError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Seed must contain at least %d tokens after normalization", rm.run.Order))
			return
		}
		split := len(tokens) - rm.run.Order
		prefix, state = tokens[:split], tokens[split:]
	}

	generated, err := rm.model.Generate(state, length, nil)
	if err != nil {
		a.logger.Error("Generation failed", "model", rm.run.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		return
	}

	full := make([]string, 0, len(prefix)+len(generated))
	full = append(full, prefix...)
	full = append(full, generated...)

	respondWithJSON(w, http.StatusOK, GenerateResponse{
		Model:  rm.run.Name,
		Tokens: full,
		Text:   rm.tok.Join(full),
	})
}

// handleProbability answers a single transition probe. A state the model
// never observed, including one of the wrong length, has probability 0.
func (a *ModelAPI) handleProbability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ProbabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	rm, ok := a.lookupModel(w, req.Model)
	if !ok {
		return
	}
	if req.Next == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'next' field")
		return
	}

	respondWithJSON(w, http.StatusOK, ProbabilityResponse{
		Model:       rm.run.Name,
		State:       req.State,
		Next:        req.Next,
		Probability: rm.model.Probability(req.State, req.Next),
		Transitions: rm.model.Transitions(req.State),
	})
}
