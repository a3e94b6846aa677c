package dto

// ContactDTO represents a contact in API responses
type ContactDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	CreatedAt   string `json:"created_at"`
}

// CreateContactRequest represents the payload for creating a contact
type CreateContactRequest struct {
	UserID      uint   `json:"-"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,min=5,max=20"`
}

// UpdateContactRequest represents the payload for updating a contact
type UpdateContactRequest struct {
	UserID      uint   `json:"-"`
	ContactID   uint   `json:"-"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,min=5,max=20"`
}

// ListContactsResponse wraps the contact listing
type ListContactsResponse struct {
	Contacts []ContactDTO `json:"contacts"`
}
