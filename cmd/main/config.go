package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP API and data storage.
type ServerConfig struct {
	ApiAddr            string `json:"api_addr"`
	LogLevel           string `json:"log_level"`
	DataDir            string `json:"data_dir"`
	CorpusDatabasePath string `json:"corpus_database_path"`
}

// RunConfig describes one model built from the corpus: its tokenizer level,
// chain order, seed window length, and how many tokens to generate beyond
// the seed. An empty name defaults to the level.
type RunConfig struct {
	Name           string `json:"name"`
	Level          string `json:"level"`
	Order          int    `json:"order"`
	SeedLength     int    `json:"seed_length"`
	GenerateLength int    `json:"generate_length"`
}

// ProbeConfig is an explicit probability probe: after the named run's model
// is trained, the report gains a line with the probability that Next follows
// State. When no probes are configured, each run probes the first observed
// transition of its own corpus head instead.
type ProbeConfig struct {
	Run   string   `json:"run"`
	State []string `json:"state"`
	Next  string   `json:"next"`
}

// ReportConfig holds the settings for report mode.
type ReportConfig struct {
	OutputPath string        `json:"output_path"`
	RandomSeed uint64        `json:"random_seed"`
	Runs       []RunConfig   `json:"runs"`
	Probes     []ProbeConfig `json:"probes"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server *ServerConfig `json:"server_config"`
	Report *ReportConfig `json:"report_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:            ":7365",
		LogLevel:           "info",
		DataDir:            "./data",
		CorpusDatabasePath: "./data/chaintext.db",
	}
}

// DefaultReportConfig creates a report configuration with the classic
// two-model setup: a word-level chain of order 3 and a character-level chain
// of order 4, each probed against a well-known Alice in Wonderland state.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		OutputPath: "./result.txt",
		RandomSeed: 0,
		Runs: []RunConfig{
			{Name: "word", Level: "word", Order: 3, SeedLength: 3, GenerateLength: 50},
			{Name: "char", Level: "char", Order: 4, SeedLength: 4, GenerateLength: 200},
		},
		Probes: []ProbeConfig{
			{Run: "word", State: []string{"alice", "was", "beginning"}, Next: "to"},
			{Run: "char", State: []string{"a", "l", "i", "c"}, Next: "e"},
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	// Initialize with default configurations
	config := &Config{
		Server: DefaultServerConfig(),
		Report: DefaultReportConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the tool can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		// For other errors (e.g., permission denied), return the error.
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal the JSON from the file into the config struct.
	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
