// Package tests contains integration tests for contact management
package tests

import (
	"context"
	"testing"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		contactRepo := repository.NewContactRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		contactFlow := businessflow.NewContactFlow(contactRepo, auditRepo, testDB.DB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		t.Run("CreateAndList", func(t *testing.T) {
			created, err := contactFlow.CreateContact(context.Background(), &dto.CreateContactRequest{
				UserID:      user.ID,
				Name:        "Siti Rahma",
				PhoneNumber: "+628111111111",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Siti Rahma", created.Name)
			assert.Equal(t, "+628111111111", created.PhoneNumber)

			listed, err := contactFlow.ListContacts(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, listed.Contacts, 1)
			assert.Equal(t, created.ID, listed.Contacts[0].ID)
		})

		t.Run("DuplicatePhoneRejected", func(t *testing.T) {
			_, err := contactFlow.CreateContact(context.Background(), &dto.CreateContactRequest{
				UserID:      user.ID,
				Name:        "Another Name",
				PhoneNumber: "+628111111111",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPhoneAlreadyExists(err))
		})

		t.Run("SamePhoneDifferentOwnerAllowed", func(t *testing.T) {
			other, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			created, err := contactFlow.CreateContact(context.Background(), &dto.CreateContactRequest{
				UserID:      other.ID,
				Name:        "Shared Number",
				PhoneNumber: "+628111111111",
			}, testMetadata())
			require.NoError(t, err)
			assert.NotZero(t, created.ID)
		})

		t.Run("UpdateContact", func(t *testing.T) {
			contact, err := fixtures.CreateTestContact(user.ID, "Old Name")
			require.NoError(t, err)

			updated, err := contactFlow.UpdateContact(context.Background(), &dto.UpdateContactRequest{
				UserID:      user.ID,
				ContactID:   contact.ID,
				Name:        "New Name",
				PhoneNumber: contact.PhoneNumber,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "New Name", updated.Name)
		})

		t.Run("UpdateUnknownContact", func(t *testing.T) {
			_, err := contactFlow.UpdateContact(context.Background(), &dto.UpdateContactRequest{
				UserID:      user.ID,
				ContactID:   999999,
				Name:        "Ghost",
				PhoneNumber: "+628999999999",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsContactNotFound(err))
		})

		t.Run("DeleteContact", func(t *testing.T) {
			contact, err := fixtures.CreateTestContact(user.ID, "To Delete")
			require.NoError(t, err)

			err = contactFlow.DeleteContact(context.Background(), user.ID, contact.ID, testMetadata())
			require.NoError(t, err)

			found, err := contactRepo.ByIDForUser(context.Background(), user.ID, contact.ID)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("DeleteOtherOwnersContact", func(t *testing.T) {
			other, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			contact, err := fixtures.CreateTestContact(other.ID, "Not Yours")
			require.NoError(t, err)

			err = contactFlow.DeleteContact(context.Background(), user.ID, contact.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsContactNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
