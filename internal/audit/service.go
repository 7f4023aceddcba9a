// Package audit records destructive dashboard actions in PostgreSQL.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/db"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionUserDeleted     = "user.deleted"
	ActionPostDeleted     = "post.deleted"
	ActionMessageDeleted  = "message.deleted"
	ActionStoryDeleted    = "story.deleted"
	ActionContentRejected = "content.rejected"
)

type Entry struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Service struct {
	db  db.Querier
	log *zap.Logger
}

func NewService(db db.Querier, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Record writes one audit row. Failures are logged and swallowed: the audit
// trail never blocks the action it describes.
func (s *Service) Record(ctx context.Context, actor auth.Identity, action, target string, detail any) {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte("null")
	}
	if s.db == nil {
		s.log.Info("audit",
			zap.String("actor", actor.AdminID),
			zap.String("action", action),
			zap.String("target", target),
			zap.ByteString("detail", payload))
		return
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, action, target, detail)
		VALUES ($1,$2,$3,$4,$5)
	`, uuid.NewString(), actor.AdminID, action, target, string(payload))
	if err != nil {
		s.log.Warn("audit write failed",
			zap.String("action", action),
			zap.String("target", target),
			zap.Error(err))
	}
}

// Recent returns the newest entries first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries := []Entry{}
	if s.db == nil {
		return entries, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, actor_id, action, target, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var detail []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Target, &detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Detail = detail
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
