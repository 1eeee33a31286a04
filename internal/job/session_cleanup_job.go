package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Farid841/rara/internal/service"
)

// SessionCleanupJob prunes chat sessions that have been idle beyond the
// configured TTL. Histories are process-local, so this only bounds memory.
type SessionCleanupJob struct {
	chats  *service.ChatService
	maxAge time.Duration
}

func NewSessionCleanupJob(chats *service.ChatService, maxAge time.Duration) *SessionCleanupJob {
	return &SessionCleanupJob{chats: chats, maxAge: maxAge}
}

func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

func (j *SessionCleanupJob) Run(ctx context.Context) error {
	if j.chats == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 2 * time.Hour
	}
	if removed := j.chats.PruneIdle(maxAge); removed > 0 {
		logutil.GetLogger(ctx).Info("idle sessions pruned", zap.Int("count", removed))
	}
	return nil
}
