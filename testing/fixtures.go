// Package testing provides test utilities and database setup for the link distribution system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with a known password ("TestPass123!")
func (tf *TestFixtures) CreateTestUser() (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := rand.Intn(10000000)
	user := &models.User{
		UUID:         uuid.New(),
		Name:         "Hanif Maulana",
		Email:        fmt.Sprintf("owner.%d@example.com", suffix),
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestSession creates an active session for the user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := utils.RandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	refreshToken, err := utils.RandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		UserID:       userID,
		SessionToken: sessionToken,
		RefreshToken: &refreshToken,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		IsActive:     utils.ToPtr(true),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestContact creates a contact with a unique phone number
func (tf *TestFixtures) CreateTestContact(userID uint, name string) (*models.Contact, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	contact := &models.Contact{
		UserID:      userID,
		Name:        name,
		PhoneNumber: fmt.Sprintf("+628%s", randomDigits),
	}

	if err := tf.DB.DB.Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contact: %w", err)
	}

	return contact, nil
}

// CreateTestBatch creates a batch with the given label and capacity
func (tf *TestFixtures) CreateTestBatch(userID uint, label string, capacity int, contactID *uint) (*models.Batch, error) {
	batch := &models.Batch{
		UserID:    userID,
		Label:     label,
		Capacity:  capacity,
		ContactID: contactID,
	}

	if err := tf.DB.DB.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create test batch: %w", err)
	}

	return batch, nil
}

// CreateTestBatches creates n batches with default capacity, labeled Batch #1..#n
func (tf *TestFixtures) CreateTestBatches(userID uint, n int) ([]*models.Batch, error) {
	batches := make([]*models.Batch, 0, n)
	for i := 1; i <= n; i++ {
		batch, err := tf.CreateTestBatch(userID, fmt.Sprintf("Batch #%d", i), models.DefaultBatchCapacity, nil)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// CreateTestLinks inserts n pool links (unassigned) for the user
func (tf *TestFixtures) CreateTestLinks(userID uint, n int) ([]*models.Link, error) {
	links := make([]*models.Link, 0, n)
	for i := 0; i < n; i++ {
		link := &models.Link{
			UserID: userID,
			URL:    fmt.Sprintf("https://shop.example.com/product/%d-%d", userID, rand.Intn(100000000)),
			Status: models.LinkStatusAvailable,
		}
		if err := tf.DB.DB.Create(link).Error; err != nil {
			return nil, fmt.Errorf("failed to create test link %d: %w", i, err)
		}
		links = append(links, link)
	}
	return links, nil
}

// CreateTestAssignedLinks inserts n links already assigned to the batch
func (tf *TestFixtures) CreateTestAssignedLinks(userID, batchID uint, n int) ([]*models.Link, error) {
	links := make([]*models.Link, 0, n)
	for i := 0; i < n; i++ {
		link := &models.Link{
			UserID:  userID,
			URL:     fmt.Sprintf("https://shop.example.com/product/%d-%d", userID, rand.Intn(100000000)),
			Status:  models.LinkStatusAssigned,
			BatchID: &batchID,
		}
		if err := tf.DB.DB.Create(link).Error; err != nil {
			return nil, fmt.Errorf("failed to create assigned test link %d: %w", i, err)
		}
		links = append(links, link)
	}
	return links, nil
}

// CreateTestDevice creates an unclaimed device registration
func (tf *TestFixtures) CreateTestDevice(userID uint, contactID *uint) (*models.Device, error) {
	token, err := utils.RandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate registration token: %w", err)
	}

	device := &models.Device{
		UserID:            userID,
		ContactID:         contactID,
		RegistrationToken: token,
		TokenExpiresAt:    utils.UTCNowAdd(utils.DeviceRegistrationTTL),
		IsActive:          utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(device).Error; err != nil {
		return nil, fmt.Errorf("failed to create test device: %w", err)
	}

	return device, nil
}

// CreateTestDeliveryRecord creates a delivery history row
func (tf *TestFixtures) CreateTestDeliveryRecord(userID uint, contact *models.Contact, batch *models.Batch, linkCount int) (*models.DeliveryRecord, error) {
	record := &models.DeliveryRecord{
		UserID:      userID,
		ContactID:   &contact.ID,
		ContactName: contact.Name,
		BatchID:     batch.ID,
		BatchLabel:  batch.Label,
		LinkCount:   linkCount,
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create test delivery record: %w", err)
	}

	return record, nil
}
