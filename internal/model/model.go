package model

import "time"

// AssistantConfig is a named assistant configuration: a system prompt plus
// the identity of the document corpus ingested for it. Immutable once
// created.
type AssistantConfig struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. The sequence per session is
// append-only and lives only as long as the session.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DocumentChunk is a unit of ingested knowledge as stored in the remote
// search index: the full extracted text of one uploaded file plus its
// embedding.
type DocumentChunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}
