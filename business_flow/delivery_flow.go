package businessflow

import (
	"context"
	"fmt"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DeliveryFlow finalizes batch deliveries
type DeliveryFlow interface {
	MarkSent(ctx context.Context, req *dto.MarkSentRequest, metadata *ClientMetadata) (*dto.MarkSentResponse, error)
}

// DeliveryFlowImpl implements the delivery business flow
type DeliveryFlowImpl struct {
	batchRepo    repository.BatchRepository
	linkRepo     repository.LinkRepository
	contactRepo  repository.ContactRepository
	recordRepo   repository.DeliveryRecordRepository
	archivedRepo repository.ArchivedLinkRepository
	auditRepo    repository.AuditLogRepository
	locker       *OwnerLocker
	rc           *redis.Client
	db           *gorm.DB
}

// NewDeliveryFlow creates a new delivery flow instance
func NewDeliveryFlow(
	batchRepo repository.BatchRepository,
	linkRepo repository.LinkRepository,
	contactRepo repository.ContactRepository,
	recordRepo repository.DeliveryRecordRepository,
	archivedRepo repository.ArchivedLinkRepository,
	auditRepo repository.AuditLogRepository,
	locker *OwnerLocker,
	rc *redis.Client,
	db *gorm.DB,
) DeliveryFlow {
	return &DeliveryFlowImpl{
		batchRepo:    batchRepo,
		linkRepo:     linkRepo,
		contactRepo:  contactRepo,
		recordRepo:   recordRepo,
		archivedRepo: archivedRepo,
		auditRepo:    auditRepo,
		locker:       locker,
		rc:           rc,
		db:           db,
	}
}

// MarkSent records the delivery of a batch's links to its contact:
// one history row, archive copies of the URLs, then the links are
// deleted. A batch with no links or no contact is a silent no-op, so
// repeating the call cannot double-log a delivery.
func (df *DeliveryFlowImpl) MarkSent(ctx context.Context, req *dto.MarkSentRequest, metadata *ClientMetadata) (*dto.MarkSentResponse, error) {
	if req.BatchID == nil {
		return nil, NewBusinessError("MARK_SENT_VALIDATION_FAILED", "Batch id is required", ErrBatchNotFound)
	}
	batchID := *req.BatchID

	release, err := df.locker.Acquire(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	sent := 0

	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		batch, err := df.batchRepo.ByIDForUser(txCtx, req.UserID, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return ErrBatchNotFound
		}

		links, err := df.linkRepo.ListByBatch(txCtx, req.UserID, batchID)
		if err != nil {
			return err
		}
		if len(links) == 0 || batch.ContactID == nil {
			return nil
		}

		contact, err := df.contactRepo.ByIDForUser(txCtx, req.UserID, *batch.ContactID)
		if err != nil {
			return err
		}
		if contact == nil {
			return nil
		}

		record := &models.DeliveryRecord{
			UserID:      req.UserID,
			ContactID:   &contact.ID,
			ContactName: contact.Name,
			BatchID:     batch.ID,
			BatchLabel:  batch.Label,
			LinkCount:   len(links),
			CreatedAt:   utils.UTCNow(),
		}
		if err := df.recordRepo.Save(txCtx, record); err != nil {
			return err
		}

		archived := make([]*models.ArchivedLink, 0, len(links))
		ids := make([]uint, 0, len(links))
		for _, l := range links {
			archived = append(archived, &models.ArchivedLink{
				UserID:    req.UserID,
				URL:       l.URL,
				CreatedAt: utils.UTCNow(),
			})
			ids = append(ids, l.ID)
		}
		if err := df.archivedRepo.SaveBatch(txCtx, archived); err != nil {
			return err
		}
		if err := df.linkRepo.DeleteByIDs(txCtx, req.UserID, ids); err != nil {
			return err
		}

		sent = len(links)
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Mark sent failed: %s", err.Error())
		_ = createAuditLog(ctx, df.auditRepo, &req.UserID, models.AuditActionBatchMarkedSent, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("MARK_SENT_FAILED", "Failed to record delivery", err)
	}

	if df.rc != nil {
		_ = df.rc.Del(ctx, distributionStateCacheKey(req.UserID)).Err()
	}

	msg := fmt.Sprintf("Batch %d marked sent (%d links)", batchID, sent)
	if sent == 0 {
		msg = fmt.Sprintf("Batch %d had nothing to send", batchID)
	}
	_ = createAuditLog(ctx, df.auditRepo, &req.UserID, models.AuditActionBatchMarkedSent, msg, true, nil, metadata)

	return &dto.MarkSentResponse{Message: msg, LinkCount: sent}, nil
}
