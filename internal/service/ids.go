package service

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkID derives the index key for an ingested file. The config id and
// sequence index keep chunks traceable to the ingestion run that produced
// them; the random suffix guarantees uniqueness across re-ingestions.
func chunkID(configID string, index int) string {
	return fmt.Sprintf("%s_%d_%s", configID, index, uuid.NewString())
}
