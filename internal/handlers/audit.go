package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/npc-engine/pkg/access"
)

// defaultAuditLines is how many lines are returned when n is not given
const defaultAuditLines = 100

// AuditReader returns recent audit lines, oldest first
type AuditReader interface {
	Recent(ctx context.Context, n int) ([]string, error)
}

// AuditHandler lists recent admin audit lines. Requires the Admin tier.
// GET /v1/admin/audit?n=
type AuditHandler struct {
	reader AuditReader
	logger *slog.Logger
}

func NewAuditHandler(reader AuditReader, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		reader: reader,
		logger: logger,
	}
}

func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !access.FromContext(r.Context()).Allows(access.Admin) {
		writeError(w, h.logger, http.StatusForbidden, "Insufficient permission, Admin required")
		return
	}

	n := defaultAuditLines
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid line count.")
			return
		}
		n = v
	}

	lines, err := h.reader.Recent(r.Context(), n)
	if err != nil {
		h.logger.Error("Failed to read audit lines", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read audit log.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string][]string{"lines": lines})
}
