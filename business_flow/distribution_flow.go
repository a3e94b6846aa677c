package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DistributionFlow handles the batch registry and the allocation pass
type DistributionFlow interface {
	GetState(ctx context.Context, userID uint) (*dto.DistributionStateResponse, error)
	ResizeBatches(ctx context.Context, req *dto.ResizeBatchesRequest, metadata *ClientMetadata) (*dto.ResizeBatchesResponse, error)
	Distribute(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.DistributeResponse, error)
	UpdateBatch(ctx context.Context, req *dto.UpdateBatchRequest, metadata *ClientMetadata) (*dto.UpdateBatchResponse, error)
	ListBatchLinks(ctx context.Context, userID, batchID uint) (*dto.ListBatchLinksResponse, error)
}

// DistributionFlowImpl implements the distribution business flow
type DistributionFlowImpl struct {
	batchRepo   repository.BatchRepository
	linkRepo    repository.LinkRepository
	contactRepo repository.ContactRepository
	auditRepo   repository.AuditLogRepository
	locker      *OwnerLocker
	rc          *redis.Client
	db          *gorm.DB
}

// NewDistributionFlow creates a new distribution flow instance
func NewDistributionFlow(
	batchRepo repository.BatchRepository,
	linkRepo repository.LinkRepository,
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditLogRepository,
	locker *OwnerLocker,
	rc *redis.Client,
	db *gorm.DB,
) DistributionFlow {
	return &DistributionFlowImpl{
		batchRepo:   batchRepo,
		linkRepo:    linkRepo,
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		locker:      locker,
		rc:          rc,
		db:          db,
	}
}

func distributionStateCacheKey(userID uint) string {
	return fmt.Sprintf("%s:%d", utils.DistributionStateCachePrefix, userID)
}

// GetState returns pool size, batches with derived fill counts, and the
// contact list. Served from the Redis snapshot when one is fresh.
func (df *DistributionFlowImpl) GetState(ctx context.Context, userID uint) (*dto.DistributionStateResponse, error) {
	if df.rc != nil {
		cached, err := df.rc.Get(ctx, distributionStateCacheKey(userID)).Result()
		if err == nil {
			var resp dto.DistributionStateResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	resp, err := df.loadState(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("GET_STATE_FAILED", "Failed to load distribution state", err)
	}

	if df.rc != nil {
		if bytes, err := json.Marshal(resp); err == nil {
			_ = df.rc.Set(ctx, distributionStateCacheKey(userID), bytes, utils.DistributionStateCacheTTL).Err()
		}
	}

	return resp, nil
}

func (df *DistributionFlowImpl) loadState(ctx context.Context, userID uint) (*dto.DistributionStateResponse, error) {
	poolCount, err := df.linkRepo.CountPoolForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	batches, err := df.batchRepo.ListWithFillCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	contacts, err := df.contactRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DistributionStateResponse{
		LinksInPool: poolCount,
		Batches:     make([]dto.BatchDTO, 0, len(batches)),
		Contacts:    make([]dto.ContactDTO, 0, len(contacts)),
	}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, ToBatchDTO(*b))
	}
	for _, c := range contacts {
		resp.Contacts = append(resp.Contacts, ToContactDTO(*c))
	}
	return resp, nil
}

// invalidateStateCache drops the cached snapshot after any mutation
func (df *DistributionFlowImpl) invalidateStateCache(ctx context.Context, userID uint) {
	if df.rc != nil {
		_ = df.rc.Del(ctx, distributionStateCacheKey(userID)).Err()
	}
}

// ResizeBatches grows or shrinks the registry to the desired count.
// Shrinking removes tail batches and returns their links to the pool.
func (df *DistributionFlowImpl) ResizeBatches(ctx context.Context, req *dto.ResizeBatchesRequest, metadata *ClientMetadata) (*dto.ResizeBatchesResponse, error) {
	if req.DesiredCount == nil || *req.DesiredCount < 0 {
		return nil, NewBusinessError("RESIZE_VALIDATION_FAILED", "Desired batch count is invalid", ErrInvalidBatchCount)
	}
	desired := *req.DesiredCount

	release, err := df.locker.Acquire(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	resp := &dto.ResizeBatchesResponse{}

	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		batches, err := df.batchRepo.ListForUser(txCtx, req.UserID)
		if err != nil {
			return err
		}
		current := len(batches)

		switch {
		case desired > current:
			created := make([]*models.Batch, 0, desired-current)
			for n := current + 1; n <= desired; n++ {
				created = append(created, &models.Batch{
					UserID:    req.UserID,
					Label:     fmt.Sprintf("Batch #%d", n),
					Capacity:  models.DefaultBatchCapacity,
					CreatedAt: utils.UTCNow(),
					UpdatedAt: utils.UTCNow(),
				})
			}
			if err := df.batchRepo.SaveBatch(txCtx, created); err != nil {
				return err
			}
			resp.Created = desired - current

		case desired < current:
			removed := batches[desired:]
			ids := make([]uint, 0, len(removed))
			for _, b := range removed {
				ids = append(ids, b.ID)
			}

			released, err := df.linkRepo.CountByBatches(txCtx, req.UserID, ids)
			if err != nil {
				return err
			}
			if err := df.linkRepo.ReleaseFromBatches(txCtx, req.UserID, ids); err != nil {
				return err
			}
			if err := df.batchRepo.DeleteByIDs(txCtx, req.UserID, ids); err != nil {
				return err
			}
			resp.Removed = len(ids)
			resp.Released = released
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Batch resize failed: %s", err.Error())
		_ = createAuditLog(ctx, df.auditRepo, &req.UserID, models.AuditActionBatchesResized, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("RESIZE_FAILED", "Failed to resize batches", err)
	}

	df.invalidateStateCache(ctx, req.UserID)

	msg := fmt.Sprintf("Batches resized to %d (created %d, removed %d)", desired, resp.Created, resp.Removed)
	_ = createAuditLog(ctx, df.auditRepo, &req.UserID, models.AuditActionBatchesResized, msg, true, nil, metadata)

	resp.Message = msg
	return resp, nil
}

// Distribute runs one greedy allocation pass: batches in creation order,
// each topped up from the pool until its capacity or the pool runs out.
// Over-full batches are skipped, never corrected. Running it twice in a
// row assigns nothing the second time.
func (df *DistributionFlowImpl) Distribute(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.DistributeResponse, error) {
	release, err := df.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	assigned := 0

	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		pool, err := df.linkRepo.ListPoolForUser(txCtx, userID)
		if err != nil {
			return err
		}
		if len(pool) == 0 {
			return nil
		}

		batches, err := df.batchRepo.ListWithFillCounts(txCtx, userID)
		if err != nil {
			return err
		}

		next := 0
		for _, batch := range batches {
			if next >= len(pool) {
				break
			}
			needed := batch.Remaining()
			if needed <= 0 {
				continue
			}
			if remaining := len(pool) - next; needed > remaining {
				needed = remaining
			}

			ids := make([]uint, 0, needed)
			for _, link := range pool[next : next+needed] {
				ids = append(ids, link.ID)
			}
			if err := df.linkRepo.AssignToBatch(txCtx, userID, ids, batch.ID); err != nil {
				return err
			}
			next += needed
		}
		assigned = next
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Distribution failed: %s", err.Error())
		_ = createAuditLog(ctx, df.auditRepo, &userID, models.AuditActionLinksDistributed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("DISTRIBUTE_FAILED", "Failed to distribute links", err)
	}

	df.invalidateStateCache(ctx, userID)

	msg := fmt.Sprintf("Distributed %d links", assigned)
	_ = createAuditLog(ctx, df.auditRepo, &userID, models.AuditActionLinksDistributed, msg, true, nil, metadata)

	return &dto.DistributeResponse{Message: msg, Assigned: assigned}, nil
}

// UpdateBatch changes a batch's capacity and/or assigned contact.
// Capacity may be lowered below the current fill; such batches are
// simply skipped by the allocator.
func (df *DistributionFlowImpl) UpdateBatch(ctx context.Context, req *dto.UpdateBatchRequest, metadata *ClientMetadata) (*dto.UpdateBatchResponse, error) {
	if req.Capacity == nil && req.ContactID == nil && !req.ClearContact {
		return nil, NewBusinessError("UPDATE_BATCH_VALIDATION_FAILED", "Nothing to update", ErrBatchUpdateRequired)
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, NewBusinessError("UPDATE_BATCH_VALIDATION_FAILED", "Capacity is invalid", ErrInvalidBatchCapacity)
	}

	var batch *models.Batch

	err := repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		var err error
		batch, err = df.batchRepo.ByIDForUser(txCtx, req.UserID, req.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return ErrBatchNotFound
		}

		if req.Capacity != nil {
			batch.Capacity = *req.Capacity
		}
		if req.ClearContact {
			batch.ContactID = nil
			batch.Contact = nil
		} else if req.ContactID != nil {
			contact, err := df.contactRepo.ByIDForUser(txCtx, req.UserID, *req.ContactID)
			if err != nil {
				return err
			}
			if contact == nil {
				return ErrContactNotFound
			}
			batch.ContactID = &contact.ID
			batch.Contact = contact
		}

		batch.UpdatedAt = utils.UTCNow()
		return df.batchRepo.Update(txCtx, batch)
	})

	if err != nil {
		return nil, NewBusinessError("UPDATE_BATCH_FAILED", "Failed to update batch", err)
	}

	df.invalidateStateCache(ctx, req.UserID)

	// Re-read with fill count so the response carries the derived value
	fresh, err := df.batchRepo.ByIDForUser(ctx, req.UserID, req.BatchID)
	if err == nil && fresh != nil {
		count, cErr := df.linkRepo.CountByBatches(ctx, req.UserID, []uint{fresh.ID})
		if cErr == nil {
			fresh.LinksCount = count
		}
		fresh.Contact = batch.Contact
		batch = fresh
	}

	return &dto.UpdateBatchResponse{Batch: ToBatchDTO(*batch)}, nil
}

// ListBatchLinks returns the links currently assigned to an owned batch
func (df *DistributionFlowImpl) ListBatchLinks(ctx context.Context, userID, batchID uint) (*dto.ListBatchLinksResponse, error) {
	batch, err := df.batchRepo.ByIDForUser(ctx, userID, batchID)
	if err != nil {
		return nil, NewBusinessError("LIST_BATCH_LINKS_FAILED", "Failed to load batch", err)
	}
	if batch == nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Batch not found", ErrBatchNotFound)
	}

	links, err := df.linkRepo.ListByBatch(ctx, userID, batchID)
	if err != nil {
		return nil, NewBusinessError("LIST_BATCH_LINKS_FAILED", "Failed to list batch links", err)
	}

	resp := &dto.ListBatchLinksResponse{
		BatchID: batchID,
		Links:   make([]dto.BatchLinkDTO, 0, len(links)),
	}
	for _, l := range links {
		d := dto.BatchLinkDTO{ID: l.ID, URL: l.URL}
		if l.ProcessingStatus != nil {
			d.ProcessingStatus = string(*l.ProcessingStatus)
		}
		resp.Links = append(resp.Links, d)
	}
	return resp, nil
}
