package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Farid841/rara/internal/model"
)

func TestIngest_AllFilesSucceed(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	svc := NewIngestService(embedder, index, nil)

	files := []model.UploadFile{
		textFile("a.txt", "Disease A affects the liver."),
		textFile("b.md", "Disease B affects the lungs."),
	}
	reports := svc.Ingest(context.Background(), "cfg-1", files, nil)

	require.Len(t, reports, 2)
	for i, report := range reports {
		require.Equal(t, files[i].Name, report.Name)
		require.Equal(t, model.StageDone, report.Stage)
		require.Empty(t, report.Error)
	}
	require.Len(t, index.upserts, 2)
	require.True(t, strings.HasPrefix(index.upserts[0].id, "cfg-1_0_"))
	require.True(t, strings.HasPrefix(index.upserts[1].id, "cfg-1_1_"))
	require.Equal(t, "Disease A affects the liver.", index.upserts[0].content)
}

func TestIngest_FailureIsolatedPerFile(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	svc := NewIngestService(embedder, index, nil)

	files := []model.UploadFile{
		textFile("good.txt", "Symptom catalogue."),
		csvFile("bad.csv"),
		textFile("also-good.txt", "Treatment options."),
	}
	reports := svc.Ingest(context.Background(), "cfg-2", files, nil)

	require.Len(t, reports, 3)
	require.Equal(t, model.StageDone, reports[0].Stage)
	require.Equal(t, model.StageExtractFailed, reports[1].Stage)
	require.NotEmpty(t, reports[1].Error)
	require.Equal(t, model.StageDone, reports[2].Stage)

	// The unsupported file never reaches the embedder or the index.
	require.Len(t, embedder.calls, 2)
	require.Len(t, index.upserts, 2)
}

func TestIngest_EmptyTextFailsExtraction(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewIngestService(embedder, &fakeIndex{}, nil)

	reports := svc.Ingest(context.Background(), "cfg-3", []model.UploadFile{
		textFile("blank.txt", "   \n\t  "),
	}, nil)

	require.Len(t, reports, 1)
	require.Equal(t, model.StageExtractFailed, reports[0].Stage)
	require.Empty(t, embedder.calls)
}

func TestIngest_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errRemote}
	index := &fakeIndex{}
	svc := NewIngestService(embedder, index, nil)

	reports := svc.Ingest(context.Background(), "cfg-4", []model.UploadFile{
		textFile("a.txt", "content"),
	}, nil)

	require.Equal(t, model.StageEmbedFailed, reports[0].Stage)
	require.Contains(t, reports[0].Error, "remote unavailable")
	require.Empty(t, index.upserts)
}

func TestIngest_StoreFailure(t *testing.T) {
	index := &fakeIndex{upsertErr: errRemote}
	svc := NewIngestService(&fakeEmbedder{}, index, nil)

	reports := svc.Ingest(context.Background(), "cfg-5", []model.UploadFile{
		textFile("a.txt", "content"),
	}, nil)

	require.Equal(t, model.StageStoreFailed, reports[0].Stage)
	require.Contains(t, reports[0].Error, "remote unavailable")
}

func TestIngest_ProgressReportsEveryStageTransition(t *testing.T) {
	svc := NewIngestService(&fakeEmbedder{}, &fakeIndex{}, nil)

	files := []model.UploadFile{
		textFile("a.txt", "one"),
		csvFile("b.csv"),
		textFile("c.txt", "three"),
	}
	var seen []string
	svc.Ingest(context.Background(), "cfg-6", files, func(r model.FileReport) {
		seen = append(seen, fmt.Sprintf("%s:%s", r.Name, r.Stage))
	})

	require.Equal(t, []string{
		"a.txt:" + string(model.StagePending),
		"a.txt:" + string(model.StageTextExtracted),
		"a.txt:" + string(model.StageEmbedded),
		"a.txt:" + string(model.StageStored),
		"a.txt:" + string(model.StageDone),
		"b.csv:" + string(model.StagePending),
		"b.csv:" + string(model.StageExtractFailed),
		"c.txt:" + string(model.StagePending),
		"c.txt:" + string(model.StageTextExtracted),
		"c.txt:" + string(model.StageEmbedded),
		"c.txt:" + string(model.StageStored),
		"c.txt:" + string(model.StageDone),
	}, seen)
}

func TestIngest_ReturnedReportsAreTerminal(t *testing.T) {
	svc := NewIngestService(&fakeEmbedder{err: errRemote}, &fakeIndex{}, nil)

	reports := svc.Ingest(context.Background(), "cfg-9", []model.UploadFile{
		textFile("a.txt", "one"),
		csvFile("b.csv"),
	}, nil)

	require.Len(t, reports, 2)
	for _, report := range reports {
		require.True(t, report.Stage.Terminal())
	}
}

func TestIngest_ArchivesOriginalUpload(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewIngestService(&fakeEmbedder{}, &fakeIndex{}, archive)

	svc.Ingest(context.Background(), "cfg-7", []model.UploadFile{
		textFile("notes.txt", "original bytes"),
	}, nil)

	require.Len(t, archive.saved, 1)
	require.Equal(t, []byte("original bytes"), archive.saved["cfg-7/0_notes.txt"])
}

func TestIngest_ArchiveFailureDoesNotFailFile(t *testing.T) {
	archive := &fakeArchive{err: errRemote}
	svc := NewIngestService(&fakeEmbedder{}, &fakeIndex{}, archive)

	reports := svc.Ingest(context.Background(), "cfg-8", []model.UploadFile{
		textFile("notes.txt", "content"),
	}, nil)

	require.Equal(t, model.StageDone, reports[0].Stage)
}
