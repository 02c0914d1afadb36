package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cwbudde/weberfit/internal/weber"
)

// maxJobPoints bounds the size of a single request
const maxJobPoints = 100000

// validateJobConfig checks a decoded request before a job is created
func validateJobConfig(config JobConfig) error {
	if len(config.Points) > maxJobPoints {
		return fmt.Errorf("too many points: %d (max %d)", len(config.Points), maxJobPoints)
	}
	if err := weber.ValidatePoints(config.Points); err != nil {
		return err
	}
	if err := config.Settings.Validate(); err != nil {
		return err
	}

	switch config.Method {
	case "", weber.MethodNelderMead, weber.MethodMayfly:
	default:
		return fmt.Errorf("unknown method: %s", config.Method)
	}

	if config.SeedIndex >= len(config.Points) {
		return fmt.Errorf("seedIndex %d out of range for %d points", config.SeedIndex, len(config.Points))
	}
	return nil
}

// cacheKey fingerprints everything that determines a solve's outcome.
// Tracing and the worker count do not change the result, so they are left out.
func cacheKey(config JobConfig) (string, error) {
	cfg := config.Config
	if cfg.Method == "" {
		cfg.Method = weber.MethodNelderMead
	}
	cfg.Settings.Workers = 0

	data, err := json.Marshal(struct {
		Points []weber.WeightedPoint `json:"points"`
		Config weber.Config          `json:"config"`
	}{config.Points, cfg})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint job: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
