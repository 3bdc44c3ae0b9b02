package datasync

import (
	"context"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// personOwned is implemented by datamodels whose writes should schedule an
// auto-sync for the owning person.
type personOwned interface {
	OwnerPersonID() int64
}

// SyncAPI is the slice of the orchestration service the coordinator drives.
type SyncAPI interface {
	SyncAllContractsForUser(ctx context.Context, personAccountID int64, syncType string) (*UserSyncResult, error)
}

// Coordinator implements commit-triggered auto-sync. Profile writes mark the
// owning person as pending from inside the write transaction (no sync work
// happens there); the write path drains the set once after its transaction
// commits. Running the sync after commit keeps derived writes out of the
// source flush and guarantees the edit is durable before anything is
// propagated.
//
// The coordinator is constructed and injected at startup; it owns no global
// state, so tests can build and reset their own.
type Coordinator struct {
	syncer SyncAPI
	logger *slog.Logger

	mu      sync.Mutex
	pending map[int64]struct{}
	enabled bool
}

func NewCoordinator(syncer SyncAPI, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		syncer:  syncer,
		logger:  logger,
		pending: make(map[int64]struct{}),
		enabled: true,
	}
}

// Enable turns auto-sync on. Idempotent.
func (c *Coordinator) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

// Disable turns auto-sync off and clears anything pending, for bulk imports
// and tests. Idempotent.
func (c *Coordinator) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
	c.pending = make(map[int64]struct{})
}

func (c *Coordinator) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// MarkPending schedules an auto-sync for the person. Repeated edits inside
// one transaction collapse into a single entry.
func (c *Coordinator) MarkPending(personAccountID int64) {
	if personAccountID == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.pending[personAccountID] = struct{}{}
}

// PendingCount reports how many persons are waiting for a drain.
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// DrainPending runs the deferred syncs. Callers invoke it right after their
// write transaction commits. Each contract syncs in its own new transaction;
// failures are logged and skipped. The canonical edit already succeeded, and
// there is no retry until the next triggering edit or a manual sync.
func (c *Coordinator) DrainPending(ctx context.Context) {
	c.mu.Lock()
	if !c.enabled || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	drained := c.pending
	c.pending = make(map[int64]struct{})
	c.mu.Unlock()

	for personID := range drained {
		result, err := c.syncer.SyncAllContractsForUser(ctx, personID, synclog.SyncTypeAuto)
		if err != nil {
			c.logger.Error("auto-sync sweep failed",
				"error", err, "person_account_id", personID)
			continue
		}
		for _, outcome := range result.Outcomes {
			if outcome.Error != "" {
				c.logger.Error("auto-sync failed for contract",
					"contract_id", outcome.ContractID,
					"person_account_id", personID,
					"error", outcome.Error)
			}
		}
	}
}

// Register hooks the coordinator into GORM's create and update callbacks so
// any write to a person-owned model marks it pending while still inside the
// write transaction.
func (c *Coordinator) Register(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("people_sync:auto_sync_create", c.afterWrite); err != nil {
		return err
	}
	return db.Callback().Update().After("gorm:update").Register("people_sync:auto_sync_update", c.afterWrite)
}

func (c *Coordinator) afterWrite(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil {
		return
	}
	if owned, ok := tx.Statement.Model.(personOwned); ok {
		c.MarkPending(owned.OwnerPersonID())
		return
	}
	if owned, ok := tx.Statement.Dest.(personOwned); ok {
		c.MarkPending(owned.OwnerPersonID())
	}
}
