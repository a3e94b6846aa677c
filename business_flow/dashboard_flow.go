package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DashboardFlow serves the delivery history and the workspace reset
type DashboardFlow interface {
	History(ctx context.Context, userID uint) (*dto.HistoryResponse, error)
	ForceRestart(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.ForceRestartResponse, error)
}

// DashboardFlowImpl implements the dashboard business flow
type DashboardFlowImpl struct {
	recordRepo   repository.DeliveryRecordRepository
	linkRepo     repository.LinkRepository
	archivedRepo repository.ArchivedLinkRepository
	batchRepo    repository.BatchRepository
	auditRepo    repository.AuditLogRepository
	locker       *OwnerLocker
	rc           *redis.Client
	db           *gorm.DB
}

// NewDashboardFlow creates a new dashboard flow instance
func NewDashboardFlow(
	recordRepo repository.DeliveryRecordRepository,
	linkRepo repository.LinkRepository,
	archivedRepo repository.ArchivedLinkRepository,
	batchRepo repository.BatchRepository,
	auditRepo repository.AuditLogRepository,
	locker *OwnerLocker,
	rc *redis.Client,
	db *gorm.DB,
) DashboardFlow {
	return &DashboardFlowImpl{
		recordRepo:   recordRepo,
		linkRepo:     linkRepo,
		archivedRepo: archivedRepo,
		batchRepo:    batchRepo,
		auditRepo:    auditRepo,
		locker:       locker,
		rc:           rc,
		db:           db,
	}
}

// History returns the latest delivery records, newest first
func (df *DashboardFlowImpl) History(ctx context.Context, userID uint) (*dto.HistoryResponse, error) {
	records, err := df.recordRepo.RecentForUser(ctx, userID, utils.DeliveryHistoryLimit)
	if err != nil {
		return nil, NewBusinessError("HISTORY_FAILED", "Failed to load delivery history", err)
	}

	resp := &dto.HistoryResponse{Records: make([]dto.DeliveryRecordDTO, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, dto.DeliveryRecordDTO{
			ID:          r.ID,
			ContactID:   r.ContactID,
			ContactName: r.ContactName,
			BatchLabel:  r.BatchLabel,
			LinkCount:   r.LinkCount,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// ForceRestart wipes the owner's links, archive, batches and delivery
// records. Contacts and devices survive.
func (df *DashboardFlowImpl) ForceRestart(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.ForceRestartResponse, error) {
	release, err := df.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		if err := df.linkRepo.DeleteAllForUser(txCtx, userID); err != nil {
			return err
		}
		if err := df.archivedRepo.DeleteAllForUser(txCtx, userID); err != nil {
			return err
		}
		if err := df.batchRepo.DeleteAllForUser(txCtx, userID); err != nil {
			return err
		}
		return df.recordRepo.DeleteAllForUser(txCtx, userID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Workspace reset failed: %s", err.Error())
		_ = createAuditLog(ctx, df.auditRepo, &userID, models.AuditActionWorkspaceReset, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("FORCE_RESTART_FAILED", "Failed to reset workspace", err)
	}

	if df.rc != nil {
		_ = df.rc.Del(ctx, distributionStateCacheKey(userID)).Err()
	}

	_ = createAuditLog(ctx, df.auditRepo, &userID, models.AuditActionWorkspaceReset, "Workspace reset", true, nil, metadata)

	return &dto.ForceRestartResponse{Message: "Workspace reset"}, nil
}
