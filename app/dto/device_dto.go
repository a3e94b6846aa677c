package dto

// MintRegistrationTokenRequest creates a short-lived device registration token
type MintRegistrationTokenRequest struct {
	UserID    uint    `json:"-"`
	ContactID *uint   `json:"contact_id,omitempty"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// MintRegistrationTokenResponse returns the token a device must redeem
type MintRegistrationTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// ClaimDeviceRequest redeems a registration token from the PWA client
type ClaimDeviceRequest struct {
	RegistrationToken string  `json:"registration_token" validate:"required,min=16,max=128"`
	Name              *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// ClaimDeviceResponse returns the long-lived device credential
type ClaimDeviceResponse struct {
	DeviceToken string `json:"device_token"`
	DeviceID    uint   `json:"device_id"`
}

// DeviceDTO represents a registered device in owner-facing listings
type DeviceDTO struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name,omitempty"`
	Contact    *ContactDTO `json:"contact,omitempty"`
	IsActive   bool        `json:"is_active"`
	Claimed    bool        `json:"claimed"`
	LastSeenAt string      `json:"last_seen_at,omitempty"`
}

// ListDevicesResponse wraps the device listing
type ListDevicesResponse struct {
	Devices []DeviceDTO `json:"devices"`
}

// PwaBatchDTO is a batch as seen by a polling device
type PwaBatchDTO struct {
	ID    uint           `json:"id"`
	Label string         `json:"label"`
	Links []BatchLinkDTO `json:"links"`
}

// PwaBatchesResponse wraps the batches a device should work through
type PwaBatchesResponse struct {
	Batches []PwaBatchDTO `json:"batches"`
}

// UpdateLinkStatusRequest reports a per-link processing outcome
type UpdateLinkStatusRequest struct {
	DeviceID uint   `json:"-"`
	LinkID   *uint  `json:"link_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=processing completed failed"`
}

// UpdateLinkStatusResponse acknowledges a link status report
type UpdateLinkStatusResponse struct {
	Message string `json:"message"`
}

// CompleteBatchRequest marks a batch finished from the device side
type CompleteBatchRequest struct {
	DeviceID uint  `json:"-"`
	BatchID  *uint `json:"batch_id" validate:"required"`
}

// CompleteBatchResponse acknowledges batch completion
type CompleteBatchResponse struct {
	Message string `json:"message"`
}
