package dto

// BatchDTO represents a batch with its derived fill count
type BatchDTO struct {
	ID         uint        `json:"id"`
	Label      string      `json:"label"`
	Capacity   int         `json:"capacity"`
	LinksCount int64       `json:"links_count"`
	Contact    *ContactDTO `json:"contact,omitempty"`
}

// DistributionStateResponse is the aggregate state of the distribution page
type DistributionStateResponse struct {
	LinksInPool int64        `json:"links_in_pool"`
	Batches     []BatchDTO   `json:"batches"`
	Contacts    []ContactDTO `json:"contacts"`
}

// ResizeBatchesRequest sets the desired number of batches
type ResizeBatchesRequest struct {
	UserID       uint `json:"-"`
	DesiredCount *int `json:"desired_count" validate:"required,gte=0,lte=1000"`
}

// ResizeBatchesResponse reports the outcome of a registry resize
type ResizeBatchesResponse struct {
	Message  string `json:"message"`
	Created  int    `json:"created"`
	Removed  int    `json:"removed"`
	Released int64  `json:"released_links"`
}

// DistributeResponse reports the outcome of an allocation pass
type DistributeResponse struct {
	Message  string `json:"message"`
	Assigned int    `json:"assigned_links"`
}

// UpdateBatchRequest changes a batch's capacity and/or assigned contact.
// ClearContact unassigns the contact when true.
type UpdateBatchRequest struct {
	UserID       uint  `json:"-"`
	BatchID      uint  `json:"-"`
	Capacity     *int  `json:"capacity,omitempty" validate:"omitempty,gte=1,lte=100000"`
	ContactID    *uint `json:"contact_id,omitempty"`
	ClearContact bool  `json:"clear_contact,omitempty"`
}

// UpdateBatchResponse returns the updated batch
type UpdateBatchResponse struct {
	Batch BatchDTO `json:"batch"`
}

// BatchLinkDTO represents a link inside a batch listing
type BatchLinkDTO struct {
	ID               uint   `json:"id"`
	URL              string `json:"url"`
	ProcessingStatus string `json:"processing_status,omitempty"`
}

// ListBatchLinksResponse wraps the links of one batch
type ListBatchLinksResponse struct {
	BatchID uint           `json:"batch_id"`
	Links   []BatchLinkDTO `json:"links"`
}

// MarkSentRequest finalizes a batch delivery
type MarkSentRequest struct {
	UserID  uint  `json:"-"`
	BatchID *uint `json:"batch_id" validate:"required"`
}

// MarkSentResponse reports the outcome of a delivery finalization
type MarkSentResponse struct {
	Message   string `json:"message"`
	LinkCount int    `json:"link_count"`
}
