package audit

import (
	"context"
	"log/slog"

	"github.com/user/erp-api/internal/usecase"
)

// StdoutPublisher is an implementation of usecase.AuditPublisher that writes
// events to the application log. Used when no broker is configured.
type StdoutPublisher struct {
	logger *slog.Logger
}

// NewStdoutPublisher creates a new StdoutPublisher.
func NewStdoutPublisher(logger *slog.Logger) *StdoutPublisher {
	return &StdoutPublisher{logger: logger}
}

func (p *StdoutPublisher) Publish(ctx context.Context, event usecase.AuditEvent) error {
	p.logger.Info("audit event",
		"action", event.Action,
		"tenant_id", event.TenantID,
		"scope", event.Scope,
		"code", event.Code,
		"id", event.ID,
	)
	return nil
}
