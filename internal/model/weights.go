package model

import (
	"errors"
	"fmt"
	"log"
	"os"
)

var (
	ErrModelNotFound      = errors.New("base model not found")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// Weights is the graph the session is created from.
type Weights struct {
	Path      string
	FineTuned bool
}

// ResolveWeights prefers the fine-tuned checkpoint. A missing checkpoint is
// not fatal: the base weights are returned together with
// ErrCheckpointNotFound so the caller can warn about it.
func ResolveWeights(basePath, checkpointPath string) (Weights, error) {
	if checkpointPath != "" {
		info, err := os.Stat(checkpointPath)
		switch {
		case err == nil && info.IsDir():
			return Weights{}, fmt.Errorf("checkpoint %s is a directory", checkpointPath)
		case err == nil:
			return Weights{Path: checkpointPath, FineTuned: true}, nil
		case !errors.Is(err, os.ErrNotExist):
			return Weights{}, fmt.Errorf("failed to stat checkpoint: %w", err)
		}
	}

	if _, err := os.Stat(basePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Weights{}, fmt.Errorf("%w: %s (checkpoint %q missing too)", ErrModelNotFound, basePath, checkpointPath)
		}
		return Weights{}, fmt.Errorf("failed to stat base model: %w", err)
	}

	return Weights{Path: basePath}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointPath)
}

// LoadWeights resolves the graph to load and reports the outcome on logger.
// A missing checkpoint is logged as a warning and the base weights are used.
func LoadWeights(basePath, checkpointPath string, logger *log.Logger) (Weights, error) {
	weights, err := ResolveWeights(basePath, checkpointPath)
	switch {
	case errors.Is(err, ErrCheckpointNotFound):
		logger.Printf("warning: %v, using base weights from %s", err, weights.Path)
		return weights, nil
	case err != nil:
		return Weights{}, err
	}
	logger.Printf("Loaded checkpoint: %s", weights.Path)
	return weights, nil
}
