package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/application/publish"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/validate"
)

// HeaderWarnings carries export warnings; the body is the file itself.
const HeaderWarnings = "X-Syndication-Warnings"

// Syndicator is the slice of publish.Service the handlers call.
type Syndicator interface {
	PublishEverywhere(ctx context.Context, eventID, organizerID string) (*domain.PublicationSummary, error)
	UpdateEverywhere(ctx context.Context, eventID, organizerID string) (*domain.PublicationSummary, error)
	Withdraw(ctx context.Context, eventID, organizerID string, platform domain.Platform) (*domain.PublicationResult, error)
	ListPublications(ctx context.Context, eventID, organizerID string) ([]domain.PublicationLog, error)
	ExportResidentAdvisor(ctx context.Context, eventID, organizerID, format string) (*publish.Export, error)
}

type PublicationsHandler struct {
	svc Syndicator
}

func NewPublicationsHandler(svc Syndicator) *PublicationsHandler {
	return &PublicationsHandler{svc: svc}
}

func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := dto.EventPath{EventID: chi.URLParam(r, "event_id")}
	if err := validate.Struct(p); err != nil {
		response.Err(w, r, err)
		return "", false
	}
	return p.EventID, true
}

// Publish sends the event to every connected platform. Per-platform failures
// are part of the summary, so any completed run is a 201.
func (h *PublicationsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.PublishEverywhere(r.Context(), id, middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, sum)
}

func (h *PublicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.UpdateEverywhere(r.Context(), id, middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, sum)
}

func (h *PublicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	logs, err := h.svc.ListPublications(r.Context(), id, middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPublicationList(logs))
}

// Withdraw deletes the event from one platform. A platform refusal is reported
// as 502 with the attempt in the body.
func (h *PublicationsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	p := dto.WithdrawPath{
		EventID:  chi.URLParam(r, "event_id"),
		Platform: chi.URLParam(r, "platform"),
	}
	if err := validate.Struct(p); err != nil {
		response.Err(w, r, err)
		return
	}
	platform, err := domain.ParsePlatform(p.Platform)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	res, err := h.svc.Withdraw(r.Context(), p.EventID, middleware.UserID(r), platform)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	response.Data(w, status, res)
}

func (h *PublicationsHandler) ExportResidentAdvisor(w http.ResponseWriter, r *http.Request) {
	q := dto.ExportQuery{
		EventID: chi.URLParam(r, "event_id"),
		Format:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))),
	}
	if err := validate.Struct(q); err != nil {
		response.Err(w, r, err)
		return
	}

	exp, err := h.svc.ExportResidentAdvisor(r.Context(), q.EventID, middleware.UserID(r), q.Format)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	if len(exp.Warnings) > 0 {
		w.Header().Set(HeaderWarnings, strings.Join(exp.Warnings, "; "))
	}

	switch {
	case strings.HasPrefix(exp.ContentType, "application/json"):
		render.JSON(w, r, json.RawMessage(exp.Body))
	case strings.HasPrefix(exp.ContentType, "text/plain"):
		render.PlainText(w, r, string(exp.Body))
	default:
		w.Header().Set("Content-Type", exp.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(exp.Body)
	}
}
