package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joescharf/clockme/internal/models"
)

var (
	// ErrNotFound means no project record exists yet.
	ErrNotFound = errors.New("project record not found")
	// ErrCorrupt means a record exists but cannot be parsed or is inconsistent.
	ErrCorrupt = errors.New("project record is corrupt")
)

// Store persists the single Project record of a tracking directory.
type Store interface {
	Load(ctx context.Context) (*models.Project, error)
	Save(ctx context.Context, p *models.Project) error
	Exists(ctx context.Context) (bool, error)
}

// Encode renders the record as indented JSON.
func Encode(p *models.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize project data: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a record, filling in optional collections older records
// lack, and rejects records the state machine cannot produce.
func Decode(data []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &p, nil
}
