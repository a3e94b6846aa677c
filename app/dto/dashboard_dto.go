package dto

// DeliveryRecordDTO represents one delivery-history entry
type DeliveryRecordDTO struct {
	ID          uint   `json:"id"`
	ContactID   *uint  `json:"contact_id,omitempty"`
	ContactName string `json:"contact_name"`
	BatchLabel  string `json:"batch_label"`
	LinkCount   int    `json:"link_count"`
	CreatedAt   string `json:"created_at"`
}

// HistoryResponse wraps the recent delivery history
type HistoryResponse struct {
	Records []DeliveryRecordDTO `json:"records"`
}

// ForceRestartResponse acknowledges a workspace reset
type ForceRestartResponse struct {
	Message string `json:"message"`
}
