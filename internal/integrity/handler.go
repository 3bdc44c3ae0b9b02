package integrity

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/transport"
)

type ServiceAPI interface {
	ValidateAll(ctx context.Context, companyID int64) ([]Issue, error)
	GetSummary(ctx context.Context, companyID int64) (*Summary, error)
	AutoFix(ctx context.Context, companyID int64, dryRun bool) (*FixResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

type IssuesResponse struct {
	Issues []Issue `json:"issues"`
	Total  int     `json:"total"`
}

type AutoFixDTO struct {
	CompanyID int64 `json:"company_id"`
	DryRun    bool  `json:"dry_run"`
}

func (h *Handler) ValidateAll(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	issues, err := h.Service.ValidateAll(r.Context(), companyID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, IssuesResponse{Issues: issues, Total: len(issues)})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.GetSummary(r.Context(), companyID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) AutoFix(w http.ResponseWriter, r *http.Request) {
	var dto AutoFixDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.Service.AutoFix(r.Context(), dto.CompanyID, dto.DryRun)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("company_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid company id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, err.Error())
}
