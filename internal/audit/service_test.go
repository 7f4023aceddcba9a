package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"

	"github.com/pashagolub/pgxmock/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errAudit = errors.New("audit error")

func TestRecordInsertsRow(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(pgxmock.AnyArg(), "admin-1", ActionUserDeleted, "user-1", `{"posts":2}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock, zap.NewNop())
	svc.Record(context.Background(), auth.Identity{AdminID: "admin-1"}, ActionUserDeleted, "user-1", map[string]int{"posts": 2})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordFailureIsLogged(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(pgxmock.AnyArg(), "admin-1", ActionPostDeleted, "post-1", "null").
		WillReturnError(errAudit)

	core, logs := observer.New(zap.WarnLevel)
	svc := NewService(mock, zap.New(core))
	svc.Record(context.Background(), auth.Identity{AdminID: "admin-1"}, ActionPostDeleted, "post-1", nil)

	if logs.FilterMessage("audit write failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestRecordWithoutDatabaseLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := NewService(nil, zap.New(core))
	svc.Record(context.Background(), auth.Identity{AdminID: "admin-1"}, ActionStoryDeleted, "story-1", nil)

	if logs.FilterMessage("audit").Len() != 1 {
		t.Fatalf("expected audit entry in logs")
	}
	entries, err := svc.Recent(context.Background(), 10)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list without database")
	}
}

func TestRecent(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, actor_id, action, target, detail, created_at`).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "action", "target", "detail", "created_at"}).
			AddRow("a-1", "admin-1", ActionUserDeleted, "user-1", []byte(`{"posts":1}`), now))

	entries, err := NewService(mock, zap.NewNop()).Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || string(entries[0].Detail) != `{"posts":1}` {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestRecentQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, actor_id, action, target, detail, created_at`).
		WithArgs(5).
		WillReturnError(errAudit)

	if _, err := NewService(mock, zap.NewNop()).Recent(context.Background(), 5); err == nil {
		t.Fatalf("expected error")
	}
}
