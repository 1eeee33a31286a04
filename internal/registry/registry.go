package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/model"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
)

// Registry is the durable catalog of assistant configurations, one JSON
// file per record named <id>.json. Records are immutable after creation;
// there is no update or delete.
type Registry struct {
	dir string
}

func New(dir string) (*Registry, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("registry dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	return &Registry{dir: dir}, nil
}

// Create writes a new assistant configuration with a fresh identifier and
// returns it. Identifiers are never reused.
func (r *Registry) Create(ctx context.Context, name, instructions string) (*model.AssistantConfig, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(instructions) == "" {
		return nil, fmt.Errorf("%w: name and instructions are required", appErr.ErrInvalid)
	}
	cfg := &model.AssistantConfig{
		ID:           uuid.NewString(),
		Name:         name,
		Instructions: instructions,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode assistant config: %w", err)
	}
	path := filepath.Join(r.dir, cfg.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write assistant config: %w", err)
	}
	logutil.GetLogger(ctx).Info("assistant config created",
		zap.String("id", cfg.ID),
		zap.String("name", cfg.Name),
	)
	return cfg, nil
}

// List reads every stored configuration, oldest first. Malformed records are
// skipped with a warning; one corrupt file never hides the rest.
func (r *Registry) List(ctx context.Context) ([]*model.AssistantConfig, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read registry dir: %w", err)
	}
	logger := logutil.GetLogger(ctx)
	configs := make([]*model.AssistantConfig, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable assistant config",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		var cfg model.AssistantConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			logger.Warn("skipping malformed assistant config",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if cfg.ID == "" {
			logger.Warn("skipping assistant config without id",
				zap.String("file", entry.Name()))
			continue
		}
		configs = append(configs, &cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].CreatedAt.Before(configs[j].CreatedAt)
	})
	return configs, nil
}

// Find returns the configuration with the given id, or ErrNotFound.
func (r *Registry) Find(ctx context.Context, id string) (*model.AssistantConfig, error) {
	configs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		if cfg.ID == id {
			return cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: assistant config %s", appErr.ErrNotFound, id)
}
