package businessflow

import (
	"context"
	"fmt"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"gorm.io/gorm"
)

// ContactFlow handles CRUD for an owner's contact list
type ContactFlow interface {
	ListContacts(ctx context.Context, userID uint) (*dto.ListContactsResponse, error)
	CreateContact(ctx context.Context, req *dto.CreateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error)
	UpdateContact(ctx context.Context, req *dto.UpdateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error)
	DeleteContact(ctx context.Context, userID, contactID uint, metadata *ClientMetadata) error
}

// ContactFlowImpl implements the contact business flow
type ContactFlowImpl struct {
	contactRepo repository.ContactRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewContactFlow creates a new contact flow instance
func NewContactFlow(
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ContactFlow {
	return &ContactFlowImpl{
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// ListContacts returns every contact belonging to the user
func (cf *ContactFlowImpl) ListContacts(ctx context.Context, userID uint) (*dto.ListContactsResponse, error) {
	contacts, err := cf.contactRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTACTS_FAILED", "Failed to list contacts", err)
	}

	resp := &dto.ListContactsResponse{Contacts: make([]dto.ContactDTO, 0, len(contacts))}
	for _, c := range contacts {
		resp.Contacts = append(resp.Contacts, ToContactDTO(*c))
	}
	return resp, nil
}

// CreateContact adds a contact. Phone numbers are unique per owner.
func (cf *ContactFlowImpl) CreateContact(ctx context.Context, req *dto.CreateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error) {
	var contact *models.Contact

	err := repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
		inUse, err := cf.contactRepo.PhoneInUse(txCtx, req.UserID, req.PhoneNumber, nil)
		if err != nil {
			return err
		}
		if inUse {
			return ErrPhoneAlreadyExists
		}

		contact = &models.Contact{
			UserID:      req.UserID,
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
			CreatedAt:   utils.UTCNow(),
			UpdatedAt:   utils.UTCNow(),
		}
		return cf.contactRepo.Save(txCtx, contact)
	})

	if err != nil {
		return nil, NewBusinessError("CREATE_CONTACT_FAILED", "Failed to create contact", err)
	}

	msg := fmt.Sprintf("Contact created: %d", contact.ID)
	_ = createAuditLog(ctx, cf.auditRepo, &req.UserID, models.AuditActionContactCreated, msg, true, nil, metadata)

	d := ToContactDTO(*contact)
	return &d, nil
}

// UpdateContact renames or renumbers a contact the user owns
func (cf *ContactFlowImpl) UpdateContact(ctx context.Context, req *dto.UpdateContactRequest, metadata *ClientMetadata) (*dto.ContactDTO, error) {
	var contact *models.Contact

	err := repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
		var err error
		contact, err = cf.contactRepo.ByIDForUser(txCtx, req.UserID, req.ContactID)
		if err != nil {
			return err
		}
		if contact == nil {
			return ErrContactNotFound
		}

		inUse, err := cf.contactRepo.PhoneInUse(txCtx, req.UserID, req.PhoneNumber, &contact.ID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrPhoneAlreadyExists
		}

		contact.Name = req.Name
		contact.PhoneNumber = req.PhoneNumber
		contact.UpdatedAt = utils.UTCNow()
		return cf.contactRepo.Update(txCtx, contact)
	})

	if err != nil {
		return nil, NewBusinessError("UPDATE_CONTACT_FAILED", "Failed to update contact", err)
	}

	msg := fmt.Sprintf("Contact updated: %d", contact.ID)
	_ = createAuditLog(ctx, cf.auditRepo, &req.UserID, models.AuditActionContactUpdated, msg, true, nil, metadata)

	d := ToContactDTO(*contact)
	return &d, nil
}

// DeleteContact removes a contact. Batches pointing at it fall back to
// unassigned and delivery history keeps its name snapshot.
func (cf *ContactFlowImpl) DeleteContact(ctx context.Context, userID, contactID uint, metadata *ClientMetadata) error {
	err := repository.WithTransaction(ctx, cf.db, func(txCtx context.Context) error {
		contact, err := cf.contactRepo.ByIDForUser(txCtx, userID, contactID)
		if err != nil {
			return err
		}
		if contact == nil {
			return ErrContactNotFound
		}
		return cf.contactRepo.Delete(txCtx, userID, contactID)
	})

	if err != nil {
		return NewBusinessError("DELETE_CONTACT_FAILED", "Failed to delete contact", err)
	}

	msg := fmt.Sprintf("Contact deleted: %d", contactID)
	_ = createAuditLog(ctx, cf.auditRepo, &userID, models.AuditActionContactDeleted, msg, true, nil, metadata)

	return nil
}
