package datasync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
	"github.com/hrlink/people-sync/internal/core/events"
)

// EventHandler reacts to contract lifecycle events. Approval triggers the
// initial sync of whatever the freshly provisioned settings allow.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

func (h *EventHandler) HandleContractApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.ContractApprovedEvent)
	if !ok {
		return fmt.Errorf("expected ContractApprovedEvent, got %T", event)
	}

	h.logger.Info("running initial sync for approved contract",
		"contract_id", approved.ContractID,
		"event_id", approved.EventID())

	result, err := h.service.SyncPersonalToEmployee(ctx, approved.ContractID, nil, synclog.SyncTypeInitial, approved.ApprovedBy)
	if err != nil {
		// best effort: the approval itself already committed
		h.logger.Error("initial sync failed",
			"error", err,
			"contract_id", approved.ContractID,
			"event_id", approved.EventID())
		return err
	}

	h.logger.Info("initial sync completed",
		"contract_id", approved.ContractID,
		"changed_fields", len(result.Changes))
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeContractApproved, h.HandleContractApproved)

	h.logger.Info("datasync event handlers registered",
		"handlers", []string{events.EventTypeContractApproved})
}
