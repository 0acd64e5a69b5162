package shared

import (
	"context"
	"log/slog"
	"net/http"

	"ponto/internal/domain/audit"
	"ponto/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Audit records entry with the caller, request id and client address taken
// from r. Failures are logged and never fail the request.
func Audit(r *http.Request, auditor Auditor, entry audit.Entry) {
	if auditor == nil {
		return
	}
	if entry.ActorID == "" {
		if user, ok := middleware.GetUser(r.Context()); ok {
			entry.ActorID = user.EmployeeID
		}
	}
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = middleware.ClientIP(r)
	if err := auditor.Record(r.Context(), entry); err != nil {
		slog.Warn("audit record failed", "action", entry.Action, "entityId", entry.EntityID, "err", err)
	}
}
