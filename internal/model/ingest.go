package model

// IngestStage tracks how far a single file made it through the ingestion
// pipeline. Each failure stage is terminal for that file only.
type IngestStage string

const (
	StagePending       IngestStage = "pending"
	StageTextExtracted IngestStage = "text_extracted"
	StageEmbedded      IngestStage = "embedded"
	StageStored        IngestStage = "stored"
	StageDone          IngestStage = "done"
	StageExtractFailed IngestStage = "extract_failed"
	StageEmbedFailed   IngestStage = "embed_failed"
	StageStoreFailed   IngestStage = "store_failed"
)

// Failed reports whether the stage is one of the terminal failure exits.
func (s IngestStage) Failed() bool {
	switch s {
	case StageExtractFailed, StageEmbedFailed, StageStoreFailed:
		return true
	}
	return false
}

// Terminal reports whether the stage ends the file's pipeline, successfully
// or not. Non-terminal stages only ever appear in progress notifications.
func (s IngestStage) Terminal() bool {
	return s == StageDone || s.Failed()
}

// FileReport is the per-file outcome of an ingestion run.
type FileReport struct {
	Name  string      `json:"name"`
	Stage IngestStage `json:"stage"`
	Error string      `json:"error,omitempty"`
}

// UploadFile is one uploaded document handed to the ingestion pipeline.
type UploadFile struct {
	Name  string
	Bytes []byte
}
