package datasync

import (
	"errors"

	"github.com/hrlink/people-sync/internal/core/datamodel/synclog"
)

// SyncRequestDTO is the payload of a manual sync call.
type SyncRequestDTO struct {
	Fields   []string `json:"fields,omitempty"`
	SyncType string   `json:"sync_type,omitempty"`
	ActorID  int64    `json:"actor_id"`
}

func (dto *SyncRequestDTO) Validate() error {
	if dto.SyncType == "" {
		dto.SyncType = synclog.SyncTypeManual
	}
	switch dto.SyncType {
	case synclog.SyncTypeManual, synclog.SyncTypeAuto, synclog.SyncTypeInitial:
	default:
		return errors.New("sync_type must be one of auto, manual, initial")
	}
	return nil
}

// ApplySnapshotDTO carries a previously captured snapshot back for one-way
// application.
type ApplySnapshotDTO struct {
	Snapshot map[string]interface{} `json:"snapshot"`
	ActorID  int64                  `json:"actor_id"`
}

func (dto *ApplySnapshotDTO) Validate() error {
	if len(dto.Snapshot) == 0 {
		return errors.New("snapshot is required")
	}
	return nil
}

type SyncLogsResponse struct {
	Logs []*synclog.SyncLog `json:"logs"`
}
