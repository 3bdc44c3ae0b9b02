package datasync

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/transport"
)

type ServiceAPI interface {
	GetSyncableFields(ctx context.Context, contractID int64) (*SyncableFields, error)
	SyncPersonalToEmployee(ctx context.Context, contractID int64, targetFields []string, syncType string, actorID int64) (*SyncResult, error)
	SyncEmployeeToPersonal(ctx context.Context, contractID int64, targetFields []string, syncType string, actorID int64) (*SyncResult, error)
	SyncAllContractsForUser(ctx context.Context, personAccountID int64, syncType string) (*UserSyncResult, error)
	GetSnapshot(ctx context.Context, contractID int64, includeRelations bool, actorID int64) (map[string]interface{}, error)
	ApplySnapshotToEmployee(ctx context.Context, contractID int64, snapshot map[string]interface{}, actorID int64) (*SyncResult, error)
	GetSyncLogs(ctx context.Context, contractID int64, limit, offset int) ([]*synclog.SyncLog, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) GetSyncableFields(w http.ResponseWriter, r *http.Request) {
	contractID, ok := h.contractID(w, r)
	if !ok {
		return
	}

	fields, err := h.Service.GetSyncableFields(r.Context(), contractID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, fields)
}

func (h *Handler) SyncPersonalToEmployee(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.Service.SyncPersonalToEmployee)
}

func (h *Handler) SyncEmployeeToPersonal(w http.ResponseWriter, r *http.Request) {
	h.runSync(w, r, h.Service.SyncEmployeeToPersonal)
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, sync func(context.Context, int64, []string, string, int64) (*SyncResult, error)) {
	contractID, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto SyncRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := sync(r.Context(), contractID, dto.Fields, dto.SyncType, dto.ActorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) SyncAllForUser(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	result, svcErr := h.Service.SyncAllContractsForUser(r.Context(), personID, synclog.SyncTypeManual)
	if svcErr != nil {
		h.writeServiceError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	contractID, ok := h.contractID(w, r)
	if !ok {
		return
	}
	includeRelations := r.URL.Query().Get("include_relations") == "true"
	actorID, _ := strconv.ParseInt(r.URL.Query().Get("actor_id"), 10, 64)

	snapshot, err := h.Service.GetSnapshot(r.Context(), contractID, includeRelations, actorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) ApplySnapshot(w http.ResponseWriter, r *http.Request) {
	contractID, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto ApplySnapshotDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.ApplySnapshotToEmployee(r.Context(), contractID, dto.Snapshot, dto.ActorID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetSyncLogs(w http.ResponseWriter, r *http.Request) {
	contractID, ok := h.contractID(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	logs, err := h.Service.GetSyncLogs(r.Context(), contractID, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SyncLogsResponse{Logs: logs})
}

func (h *Handler) contractID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "contractID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid contract id")
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

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
