package filestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Farid841/rara/internal/config"
)

// Store archives original uploads after successful ingestion so a corpus
// can be audited or re-ingested later. Keys are "<config_id>/<n>_<name>".
type Store interface {
	Type() string
	Save(ctx context.Context, key string, data []byte) error
}

// New builds the archive store selected by configuration. An empty type
// means archival is disabled and the caller gets a nil store.
func New(cfg config.FileStoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "":
		return nil, nil
	case "local":
		return newLocalStore(cfg.Dir)
	case "s3":
		return newS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
}
