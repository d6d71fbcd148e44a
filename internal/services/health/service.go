package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. A nil db means the app runs on
// in-memory storage.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports process liveness and storage reachability.
func (s *Service) Status(ctx context.Context) map[string]any {
	status := map[string]any{"ok": true, "storage": "memory"}
	if s.DB == nil {
		return status
	}

	status["storage"] = "postgres"
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		status["ok"] = false
		status["storage_error"] = err.Error()
	}
	return status
}
