package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/ai"
	"github.com/Farid841/rara/internal/extract"
	"github.com/Farid841/rara/internal/filestore"
	"github.com/Farid841/rara/internal/model"
	"github.com/Farid841/rara/internal/searchindex"
)

// IngestService runs the per-file ingestion pipeline: extract text, embed
// it, store the chunk in the remote index. Each file is independent; a
// failed stage is terminal for that file only and never aborts the batch.
type IngestService struct {
	embedder ai.Embedder
	store    searchindex.Store
	archive  filestore.Store
}

// NewIngestService wires the pipeline. archive may be nil, in which case
// original uploads are not retained.
func NewIngestService(embedder ai.Embedder, store searchindex.Store, archive filestore.Store) *IngestService {
	return &IngestService{embedder: embedder, store: store, archive: archive}
}

// Ingest processes files strictly in order and returns one terminal
// FileReport per input, order preserved. progress, when non-nil, receives a
// report at every stage transition of every file, the terminal one last, so
// callers can surface live status; check Stage.Terminal to tell them apart.
func (s *IngestService) Ingest(ctx context.Context, configID string, files []model.UploadFile, progress func(model.FileReport)) []model.FileReport {
	notify := progress
	if notify == nil {
		notify = func(model.FileReport) {}
	}
	reports := make([]model.FileReport, 0, len(files))
	for i, file := range files {
		report := s.ingestOne(ctx, configID, i, file, notify)
		reports = append(reports, report)
		notify(report)
	}
	return reports
}

func (s *IngestService) ingestOne(ctx context.Context, configID string, index int, file model.UploadFile, notify func(model.FileReport)) model.FileReport {
	logger := logutil.GetLogger(ctx).With(
		zap.String("config_id", configID),
		zap.String("file", file.Name),
	)
	notify(model.FileReport{Name: file.Name, Stage: model.StagePending})

	text, err := extract.Text(file)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("no text extracted")
	}
	if err != nil {
		logger.Warn("text extraction failed", zap.Error(err))
		return model.FileReport{Name: file.Name, Stage: model.StageExtractFailed, Error: err.Error()}
	}
	notify(model.FileReport{Name: file.Name, Stage: model.StageTextExtracted})

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("embedding failed", zap.Error(err))
		return model.FileReport{Name: file.Name, Stage: model.StageEmbedFailed, Error: err.Error()}
	}
	notify(model.FileReport{Name: file.Name, Stage: model.StageEmbedded})

	id := chunkID(configID, index)
	if err := s.store.Upsert(ctx, id, text, embedding); err != nil {
		logger.Warn("chunk store failed", zap.String("chunk_id", id), zap.Error(err))
		return model.FileReport{Name: file.Name, Stage: model.StageStoreFailed, Error: err.Error()}
	}
	notify(model.FileReport{Name: file.Name, Stage: model.StageStored})

	if s.archive != nil {
		key := fmt.Sprintf("%s/%d_%s", configID, index, file.Name)
		if err := s.archive.Save(ctx, key, file.Bytes); err != nil {
			// Archival is ancillary; the chunk is already stored.
			logger.Warn("upload archive failed", zap.String("key", key), zap.Error(err))
		}
	}

	logger.Info("file ingested", zap.String("chunk_id", id), zap.Int("chars", len(text)))
	return model.FileReport{Name: file.Name, Stage: model.StageDone}
}
