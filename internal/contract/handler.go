package contract

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/internal/core/datamodel/contract"
	"github.com/hrlink/people-sync/internal/transport"
)

type ServiceAPI interface {
	CreateContract(ctx context.Context, dto CreateContractDTO) (*contract.Contract, error)
	GetContract(ctx context.Context, id int64) (*contract.Contract, error)
	ListContractsForPerson(ctx context.Context, personAccountID int64) ([]*contract.Contract, error)
	ApproveContract(ctx context.Context, id int64, approvedBy int64) (*contract.Contract, error)
	RejectContract(ctx context.Context, id int64, reason string, rejectedBy int64) (*contract.Contract, error)
	RequestTermination(ctx context.Context, id int64, requestedBy int64) (*contract.Contract, error)
	GetSettings(ctx context.Context, contractID int64) (*contract.DataSharingSettings, error)
	UpdateSettings(ctx context.Context, contractID int64, dto UpdateSettingsDTO) (*contract.DataSharingSettings, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var dto CreateContractDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateContract(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	c, err := h.Service.GetContract(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) ListContractsForPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	contracts, svcErr := h.Service.ListContractsForPerson(r.Context(), personID)
	if svcErr != nil {
		h.writeServiceError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, ContractsResponse{Contracts: contracts})
}

func (h *Handler) ApproveContract(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto ApproveContractDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.ApproveContract(r.Context(), id, dto.ApprovedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) RejectContract(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto RejectContractDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.RejectContract(r.Context(), id, dto.Reason, dto.RejectedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) RequestTermination(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto RequestTerminationDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.RequestTermination(r.Context(), id, dto.RequestedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	settings, err := h.Service.GetSettings(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contractID(w, r)
	if !ok {
		return
	}

	var dto UpdateSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.Service.UpdateSettings(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
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
