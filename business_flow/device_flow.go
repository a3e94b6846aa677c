package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// DeviceFlow handles PWA device registration and the device-facing
// polling endpoints
type DeviceFlow interface {
	MintRegistrationToken(ctx context.Context, req *dto.MintRegistrationTokenRequest, metadata *ClientMetadata) (*dto.MintRegistrationTokenResponse, error)
	Claim(ctx context.Context, req *dto.ClaimDeviceRequest, metadata *ClientMetadata) (*dto.ClaimDeviceResponse, error)
	ListDevices(ctx context.Context, userID uint) (*dto.ListDevicesResponse, error)
	DeleteDevice(ctx context.Context, userID, deviceID uint) error

	AuthenticateDevice(ctx context.Context, deviceToken string) (*models.Device, error)
	PwaBatches(ctx context.Context, deviceID uint) (*dto.PwaBatchesResponse, error)
	UpdateLinkStatus(ctx context.Context, req *dto.UpdateLinkStatusRequest) (*dto.UpdateLinkStatusResponse, error)
	CompleteBatch(ctx context.Context, req *dto.CompleteBatchRequest) (*dto.CompleteBatchResponse, error)
}

// DeviceFlowImpl implements the device business flow
type DeviceFlowImpl struct {
	deviceRepo  repository.DeviceRepository
	contactRepo repository.ContactRepository
	batchRepo   repository.BatchRepository
	linkRepo    repository.LinkRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewDeviceFlow creates a new device flow instance
func NewDeviceFlow(
	deviceRepo repository.DeviceRepository,
	contactRepo repository.ContactRepository,
	batchRepo repository.BatchRepository,
	linkRepo repository.LinkRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) DeviceFlow {
	return &DeviceFlowImpl{
		deviceRepo:  deviceRepo,
		contactRepo: contactRepo,
		batchRepo:   batchRepo,
		linkRepo:    linkRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// MintRegistrationToken creates a short-lived registration token a
// device can redeem once. Stale unclaimed tokens are purged on the way.
func (df *DeviceFlowImpl) MintRegistrationToken(ctx context.Context, req *dto.MintRegistrationTokenRequest, metadata *ClientMetadata) (*dto.MintRegistrationTokenResponse, error) {
	var device *models.Device

	err := repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		if err := df.deviceRepo.DeleteExpiredUnclaimed(txCtx, req.UserID); err != nil {
			return err
		}

		if req.ContactID != nil {
			contact, err := df.contactRepo.ByIDForUser(txCtx, req.UserID, *req.ContactID)
			if err != nil {
				return err
			}
			if contact == nil {
				return ErrContactNotFound
			}
		}

		token, err := utils.RandomToken(32)
		if err != nil {
			return err
		}

		device = &models.Device{
			UserID:            req.UserID,
			ContactID:         req.ContactID,
			Name:              req.Name,
			RegistrationToken: token,
			TokenExpiresAt:    utils.UTCNowAdd(utils.DeviceRegistrationTTL),
			IsActive:          utils.ToPtr(true),
			CreatedAt:         utils.UTCNow(),
			UpdatedAt:         utils.UTCNow(),
		}
		return df.deviceRepo.Save(txCtx, device)
	})

	if err != nil {
		return nil, NewBusinessError("MINT_TOKEN_FAILED", "Failed to mint registration token", err)
	}

	msg := fmt.Sprintf("Registration token minted for device %d", device.ID)
	_ = createAuditLog(ctx, df.auditRepo, &req.UserID, models.AuditActionDeviceTokenMinted, msg, true, nil, metadata)

	return &dto.MintRegistrationTokenResponse{
		Token:     device.RegistrationToken,
		ExpiresAt: device.TokenExpiresAt.Format(time.RFC3339),
	}, nil
}

// Claim redeems a registration token and hands back the long-lived
// device credential. A token can be redeemed exactly once.
func (df *DeviceFlowImpl) Claim(ctx context.Context, req *dto.ClaimDeviceRequest, metadata *ClientMetadata) (*dto.ClaimDeviceResponse, error) {
	var device *models.Device

	err := repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		var err error
		device, err = df.deviceRepo.ByRegistrationToken(txCtx, req.RegistrationToken)
		if err != nil {
			return err
		}
		if device == nil {
			return ErrRegistrationTokenNotFound
		}
		if device.IsClaimed() {
			return ErrRegistrationTokenUsed
		}
		if device.RegistrationExpired() {
			return ErrRegistrationTokenExpired
		}

		deviceToken, err := utils.RandomToken(32)
		if err != nil {
			return err
		}

		device.DeviceToken = &deviceToken
		device.ClaimedAt = utils.UTCNowPtr()
		device.LastSeenAt = utils.UTCNowPtr()
		if req.Name != nil {
			device.Name = req.Name
		}
		device.UpdatedAt = utils.UTCNow()
		return df.deviceRepo.Update(txCtx, device)
	})

	if err != nil {
		return nil, NewBusinessError("CLAIM_DEVICE_FAILED", "Failed to claim device", err)
	}

	msg := fmt.Sprintf("Device claimed: %d", device.ID)
	_ = createAuditLog(ctx, df.auditRepo, &device.UserID, models.AuditActionDeviceClaimed, msg, true, nil, metadata)

	return &dto.ClaimDeviceResponse{
		DeviceToken: *device.DeviceToken,
		DeviceID:    device.ID,
	}, nil
}

// ListDevices returns the owner's registered devices
func (df *DeviceFlowImpl) ListDevices(ctx context.Context, userID uint) (*dto.ListDevicesResponse, error) {
	devices, err := df.deviceRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LIST_DEVICES_FAILED", "Failed to list devices", err)
	}

	resp := &dto.ListDevicesResponse{Devices: make([]dto.DeviceDTO, 0, len(devices))}
	for _, d := range devices {
		item := dto.DeviceDTO{
			ID:       d.ID,
			IsActive: utils.IsTrue(d.IsActive),
			Claimed:  d.IsClaimed(),
		}
		if d.Name != nil {
			item.Name = *d.Name
		}
		if d.Contact != nil {
			c := ToContactDTO(*d.Contact)
			item.Contact = &c
		}
		if d.LastSeenAt != nil {
			item.LastSeenAt = d.LastSeenAt.Format(time.RFC3339)
		}
		resp.Devices = append(resp.Devices, item)
	}
	return resp, nil
}

// DeleteDevice removes a device the user owns
func (df *DeviceFlowImpl) DeleteDevice(ctx context.Context, userID, deviceID uint) error {
	device, err := df.deviceRepo.ByID(ctx, deviceID)
	if err != nil {
		return NewBusinessError("DELETE_DEVICE_FAILED", "Failed to load device", err)
	}
	if device == nil || device.UserID != userID {
		return NewBusinessError("DEVICE_NOT_FOUND", "Device not found", ErrDeviceNotFound)
	}
	if err := df.deviceRepo.Delete(ctx, userID, deviceID); err != nil {
		return NewBusinessError("DELETE_DEVICE_FAILED", "Failed to delete device", err)
	}
	return nil
}

// AuthenticateDevice resolves a device token to an active claimed
// device and bumps its last-seen timestamp.
func (df *DeviceFlowImpl) AuthenticateDevice(ctx context.Context, deviceToken string) (*models.Device, error) {
	device, err := df.deviceRepo.ByDeviceToken(ctx, deviceToken)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	if !utils.IsTrue(device.IsActive) {
		return nil, ErrDeviceInactive
	}

	device.LastSeenAt = utils.UTCNowPtr()
	device.UpdatedAt = utils.UTCNow()
	_ = df.deviceRepo.Update(ctx, device)

	return device, nil
}

// PwaBatches returns the batches (with links) assigned to the device's
// contact, the work list the PWA polls for.
func (df *DeviceFlowImpl) PwaBatches(ctx context.Context, deviceID uint) (*dto.PwaBatchesResponse, error) {
	device, err := df.deviceRepo.ByID(ctx, deviceID)
	if err != nil {
		return nil, NewBusinessError("PWA_BATCHES_FAILED", "Failed to load device", err)
	}
	if device == nil {
		return nil, NewBusinessError("DEVICE_NOT_FOUND", "Device not found", ErrDeviceNotFound)
	}
	if device.ContactID == nil {
		return nil, NewBusinessError("NO_CONTACT_ASSIGNED", "Device has no assigned contact", ErrDeviceContactNotAssigned)
	}

	batches, err := df.batchRepo.ByFilter(ctx, models.BatchFilter{
		UserID:    &device.UserID,
		ContactID: device.ContactID,
	}, "id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PWA_BATCHES_FAILED", "Failed to list batches", err)
	}

	resp := &dto.PwaBatchesResponse{Batches: make([]dto.PwaBatchDTO, 0, len(batches))}
	for _, b := range batches {
		links, err := df.linkRepo.ListByBatch(ctx, device.UserID, b.ID)
		if err != nil {
			return nil, NewBusinessError("PWA_BATCHES_FAILED", "Failed to list batch links", err)
		}
		item := dto.PwaBatchDTO{ID: b.ID, Label: b.Label, Links: make([]dto.BatchLinkDTO, 0, len(links))}
		for _, l := range links {
			d := dto.BatchLinkDTO{ID: l.ID, URL: l.URL}
			if l.ProcessingStatus != nil {
				d.ProcessingStatus = string(*l.ProcessingStatus)
			}
			item.Links = append(item.Links, d)
		}
		resp.Batches = append(resp.Batches, item)
	}
	return resp, nil
}

// UpdateLinkStatus records a per-link processing outcome reported by
// the device
func (df *DeviceFlowImpl) UpdateLinkStatus(ctx context.Context, req *dto.UpdateLinkStatusRequest) (*dto.UpdateLinkStatusResponse, error) {
	if req.LinkID == nil {
		return nil, NewBusinessError("UPDATE_LINK_STATUS_VALIDATION_FAILED", "Link id is required", ErrLinkNotFound)
	}

	status := models.LinkProcessingStatus(req.Status)
	switch status {
	case models.LinkProcessingActive, models.LinkProcessingCompleted, models.LinkProcessingFailed:
	default:
		return nil, NewBusinessError("UPDATE_LINK_STATUS_VALIDATION_FAILED", "Invalid status", ErrInvalidLinkProcessedStatus)
	}

	device, err := df.deviceRepo.ByID(ctx, req.DeviceID)
	if err != nil {
		return nil, NewBusinessError("UPDATE_LINK_STATUS_FAILED", "Failed to load device", err)
	}
	if device == nil {
		return nil, NewBusinessError("DEVICE_NOT_FOUND", "Device not found", ErrDeviceNotFound)
	}

	link, err := df.linkRepo.ByID(ctx, *req.LinkID)
	if err != nil {
		return nil, NewBusinessError("UPDATE_LINK_STATUS_FAILED", "Failed to load link", err)
	}
	if link == nil {
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}
	if link.UserID != device.UserID {
		return nil, NewBusinessError("LINK_NOT_OWNED", "Link does not belong to this device", ErrLinkNotOwnedByDevice)
	}

	if err := df.linkRepo.UpdateProcessing(ctx, link.ID, status); err != nil {
		return nil, NewBusinessError("UPDATE_LINK_STATUS_FAILED", "Failed to update link status", err)
	}

	return &dto.UpdateLinkStatusResponse{Message: "Link status updated"}, nil
}

// CompleteBatch marks every remaining link of the device's batch
// completed in one pass
func (df *DeviceFlowImpl) CompleteBatch(ctx context.Context, req *dto.CompleteBatchRequest) (*dto.CompleteBatchResponse, error) {
	if req.BatchID == nil {
		return nil, NewBusinessError("COMPLETE_BATCH_VALIDATION_FAILED", "Batch id is required", ErrBatchNotFound)
	}

	device, err := df.deviceRepo.ByID(ctx, req.DeviceID)
	if err != nil {
		return nil, NewBusinessError("COMPLETE_BATCH_FAILED", "Failed to load device", err)
	}
	if device == nil {
		return nil, NewBusinessError("DEVICE_NOT_FOUND", "Device not found", ErrDeviceNotFound)
	}
	if device.ContactID == nil {
		return nil, NewBusinessError("NO_CONTACT_ASSIGNED", "Device has no assigned contact", ErrDeviceContactNotAssigned)
	}

	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		batch, err := df.batchRepo.ByIDForUser(txCtx, device.UserID, *req.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return ErrBatchNotFound
		}
		if batch.ContactID == nil || *batch.ContactID != *device.ContactID {
			return ErrBatchNotAssignedToContact
		}

		links, err := df.linkRepo.ListByBatch(txCtx, device.UserID, batch.ID)
		if err != nil {
			return err
		}
		for _, l := range links {
			if l.ProcessingStatus != nil && *l.ProcessingStatus == models.LinkProcessingCompleted {
				continue
			}
			if err := df.linkRepo.UpdateProcessing(txCtx, l.ID, models.LinkProcessingCompleted); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, NewBusinessError("COMPLETE_BATCH_FAILED", "Failed to complete batch", err)
	}

	return &dto.CompleteBatchResponse{Message: "Batch completed"}, nil
}
