package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/npc-engine/internal/admin"
	"github.com/jwebster45206/npc-engine/internal/middleware"
)

// maxBodyBytes caps admin request bodies
const maxBodyBytes = 1 << 20

// AdminHandler exposes the admin service over JSON
type AdminHandler struct {
	svc    *admin.Service
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc *admin.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register adds the admin routes to mux under /v1/admin
func (h *AdminHandler) Register(mux *http.ServeMux) {
	// NPCs
	mux.HandleFunc("GET /v1/admin/npcs", h.listNPCs)
	mux.HandleFunc("POST /v1/admin/npcs", withBody(h, func(ctx context.Context, r *http.Request, in admin.NPCInput) admin.Result {
		return h.svc.CreateNPC(ctx, in)
	}))
	mux.HandleFunc("GET /v1/admin/npcs/{id}", withID(h, h.svc.GetNPC))
	mux.HandleFunc("PUT /v1/admin/npcs/{id}", withIDBody(h, h.svc.UpdateNPC))
	mux.HandleFunc("DELETE /v1/admin/npcs/{id}", withID(h, h.svc.DeleteNPC))
	mux.HandleFunc("POST /v1/admin/npcs/{id}/entry", withIDBody(h, h.svc.CreateEntryPage))
	mux.HandleFunc("DELETE /v1/admin/npcs/{id}/entry", withID(h, h.svc.DeleteEntryPage))

	// Pages
	mux.HandleFunc("GET /v1/admin/pages/{id}", withID(h, h.svc.GetPage))
	mux.HandleFunc("PUT /v1/admin/pages/{id}", withIDBody(h, h.svc.UpdatePage))
	mux.HandleFunc("DELETE /v1/admin/pages/{id}", withID(h, h.svc.DeletePage))
	mux.HandleFunc("PUT /v1/admin/pages/{id}/success", withIDBody(h, func(ctx context.Context, id int, in pageRef) admin.Result {
		return h.svc.SetSuccessPage(ctx, id, in.PageID)
	}))

	// Checks
	mux.HandleFunc("POST /v1/admin/pages/{id}/checks", withIDBody(h, h.svc.AddCheck))
	mux.HandleFunc("PUT /v1/admin/checks/{id}", withIDBody(h, h.svc.UpdateCheck))
	mux.HandleFunc("DELETE /v1/admin/checks/{id}", withID(h, h.svc.DeleteCheck))

	// Actions
	mux.HandleFunc("POST /v1/admin/pages/{id}/actions", withIDBody(h, h.svc.AddAction))
	mux.HandleFunc("PUT /v1/admin/actions/{id}", withIDBody(h, h.svc.UpdateAction))
	mux.HandleFunc("DELETE /v1/admin/actions/{id}", withID(h, h.svc.DeleteAction))

	// Buttons
	mux.HandleFunc("POST /v1/admin/pages/{id}/buttons", withIDBody(h, func(ctx context.Context, id int, in buttonInput) admin.Result {
		return h.svc.AddButton(ctx, id, in.ButtonID)
	}))
	mux.HandleFunc("PUT /v1/admin/buttons/{id}", withIDBody(h, func(ctx context.Context, id int, in buttonInput) admin.Result {
		return h.svc.UpdateButton(ctx, id, in.ButtonID, in.DestinationPageID)
	}))
	mux.HandleFunc("DELETE /v1/admin/buttons/{id}", withID(h, h.svc.DeleteButton))
	mux.HandleFunc("POST /v1/admin/buttons/{id}/destination", withIDBody(h, h.svc.CreateButtonDestinationPage))

	// Goods
	mux.HandleFunc("POST /v1/admin/pages/{id}/goods", withIDBody(h, h.svc.AddGood))
	mux.HandleFunc("PUT /v1/admin/goods/{id}", withIDBody(h, h.svc.UpdateGood))
	mux.HandleFunc("DELETE /v1/admin/goods/{id}", withID(h, h.svc.DeleteGood))

	// Items
	mux.HandleFunc("GET /v1/admin/items", h.keywordQuery(h.svc.SearchItems))
	mux.HandleFunc("POST /v1/admin/items", withBody(h, func(ctx context.Context, r *http.Request, in admin.ItemInput) admin.Result {
		return h.svc.CreateItem(ctx, in)
	}))
	mux.HandleFunc("GET /v1/admin/items/{id}", withID(h, h.svc.GetItem))
	mux.HandleFunc("PUT /v1/admin/items/{id}", withIDBody(h, h.svc.UpdateItem))

	// Listings
	mux.HandleFunc("GET /v1/admin/maps", h.keywordQuery(h.svc.SearchMaps))
	mux.HandleFunc("GET /v1/admin/online", h.query(h.svc.ListOnline))
	mux.HandleFunc("GET /v1/admin/regions", h.query(h.svc.ListRegions))
	mux.HandleFunc("GET /v1/admin/integrity", h.query(h.svc.Integrity))
	mux.HandleFunc("GET /v1/admin/kinds/stat", h.query(h.svc.StatKinds))
	mux.HandleFunc("GET /v1/admin/kinds/dialog", h.static(h.svc.DialogKinds))
	mux.HandleFunc("GET /v1/admin/kinds/check", h.static(h.svc.CheckKinds))
	mux.HandleFunc("GET /v1/admin/kinds/operator", h.static(h.svc.Operators))
	mux.HandleFunc("GET /v1/admin/kinds/action", h.static(h.svc.ActionKinds))
}

type pageRef struct {
	PageID int `json:"page_id"`
}

type buttonInput struct {
	ButtonID          int `json:"button_id"`
	DestinationPageID int `json:"destination_page_id"`
}

func (h *AdminHandler) listNPCs(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid page number.")
			return
		}
		page = n
	}
	h.respond(w, r, h.svc.ListNPCs(r.Context(), r.URL.Query().Get("keyword"), page))
}

func (h *AdminHandler) keywordQuery(fn func(context.Context, string) admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, r, fn(r.Context(), r.URL.Query().Get("keyword")))
	}
}

func (h *AdminHandler) query(fn func(context.Context) admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, r, fn(r.Context()))
	}
}

func (h *AdminHandler) static(fn func() admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, r, fn())
	}
}

func withID(h *AdminHandler, fn func(context.Context, int) admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}
		h.respond(w, r, fn(r.Context(), id))
	}
}

func withBody[T any](h *AdminHandler, fn func(context.Context, *http.Request, T) admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if !h.decode(w, r, &in) {
			return
		}
		h.respond(w, r, fn(r.Context(), r, in))
	}
}

func withIDBody[T any](h *AdminHandler, fn func(context.Context, int, T) admin.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}
		var in T
		if !h.decode(w, r, &in) {
			return
		}
		h.respond(w, r, fn(r.Context(), id, in))
	}
}

func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid id in path.")
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		middleware.LoggerFrom(r.Context(), h.logger).Warn("Invalid request body",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

// respond writes the envelope with a status derived from its category
func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, res admin.Result) {
	writeJSON(w, middleware.LoggerFrom(r.Context(), h.logger), statusFor(res), res)
}

func statusFor(res admin.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Category {
	case admin.CategoryAuthorization:
		return http.StatusForbidden
	case admin.CategoryNotFound:
		return http.StatusNotFound
	case admin.CategoryValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
