// Package tests contains integration tests for device registration and the PWA endpoints
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeviceFlow(testDB *testingutil.TestDB) businessflow.DeviceFlow {
	return businessflow.NewDeviceFlow(
		repository.NewDeviceRepository(testDB.DB),
		repository.NewContactRepository(testDB.DB),
		repository.NewBatchRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestDeviceRegistration(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newDeviceFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		t.Run("MintAndClaim", func(t *testing.T) {
			minted, err := flow.MintRegistrationToken(context.Background(), &dto.MintRegistrationTokenRequest{
				UserID:    user.ID,
				ContactID: &contact.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.NotEmpty(t, minted.Token)

			claimed, err := flow.Claim(context.Background(), &dto.ClaimDeviceRequest{
				RegistrationToken: minted.Token,
			}, testMetadata())
			require.NoError(t, err)
			assert.NotEmpty(t, claimed.DeviceToken)
			assert.NotZero(t, claimed.DeviceID)

			// The device token now authenticates the device
			device, err := flow.AuthenticateDevice(context.Background(), claimed.DeviceToken)
			require.NoError(t, err)
			assert.Equal(t, claimed.DeviceID, device.ID)
			assert.Equal(t, user.ID, device.UserID)
		})

		t.Run("ClaimTwiceRejected", func(t *testing.T) {
			minted, err := flow.MintRegistrationToken(context.Background(), &dto.MintRegistrationTokenRequest{
				UserID: user.ID,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.Claim(context.Background(), &dto.ClaimDeviceRequest{RegistrationToken: minted.Token}, testMetadata())
			require.NoError(t, err)

			_, err = flow.Claim(context.Background(), &dto.ClaimDeviceRequest{RegistrationToken: minted.Token}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsRegistrationTokenUsed(err))
		})

		t.Run("ExpiredTokenRejected", func(t *testing.T) {
			device, err := fixtures.CreateTestDevice(user.ID, nil)
			require.NoError(t, err)

			// Push the expiry into the past
			device.TokenExpiresAt = time.Now().UTC().Add(-1 * time.Hour)
			require.NoError(t, testDB.DB.Save(device).Error)

			_, err = flow.Claim(context.Background(), &dto.ClaimDeviceRequest{RegistrationToken: device.RegistrationToken}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsRegistrationTokenExpired(err))
		})

		t.Run("UnknownTokenRejected", func(t *testing.T) {
			_, err := flow.Claim(context.Background(), &dto.ClaimDeviceRequest{
				RegistrationToken: "definitely-not-a-minted-token-value",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsRegistrationTokenNotFound(err))
		})

		t.Run("ListAndDelete", func(t *testing.T) {
			listed, err := flow.ListDevices(context.Background(), user.ID)
			require.NoError(t, err)
			require.NotEmpty(t, listed.Devices)

			err = flow.DeleteDevice(context.Background(), user.ID, listed.Devices[0].ID)
			require.NoError(t, err)

			after, err := flow.ListDevices(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, after.Devices, len(listed.Devices)-1)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPwaEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		flow := newDeviceFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		// A claimed device acting for the contact
		minted, err := flow.MintRegistrationToken(context.Background(), &dto.MintRegistrationTokenRequest{
			UserID:    user.ID,
			ContactID: &contact.ID,
		}, testMetadata())
		require.NoError(t, err)
		claimed, err := flow.Claim(context.Background(), &dto.ClaimDeviceRequest{RegistrationToken: minted.Token}, testMetadata())
		require.NoError(t, err)

		// One batch assigned to the contact with three links
		batch, err := fixtures.CreateTestBatch(user.ID, "Batch #1", 100, &contact.ID)
		require.NoError(t, err)
		links, err := fixtures.CreateTestAssignedLinks(user.ID, batch.ID, 3)
		require.NoError(t, err)

		t.Run("BatchesForContact", func(t *testing.T) {
			resp, err := flow.PwaBatches(context.Background(), claimed.DeviceID)
			require.NoError(t, err)
			require.Len(t, resp.Batches, 1)
			assert.Equal(t, batch.ID, resp.Batches[0].ID)
			assert.Len(t, resp.Batches[0].Links, 3)
		})

		t.Run("UpdateLinkStatus", func(t *testing.T) {
			resp, err := flow.UpdateLinkStatus(context.Background(), &dto.UpdateLinkStatusRequest{
				DeviceID: claimed.DeviceID,
				LinkID:   &links[0].ID,
				Status:   "completed",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Message)

			updated, err := linkRepo.ByID(context.Background(), links[0].ID)
			require.NoError(t, err)
			require.NotNil(t, updated.ProcessingStatus)
			assert.Equal(t, models.LinkProcessingCompleted, *updated.ProcessingStatus)
		})

		t.Run("CompleteBatchMarksRemaining", func(t *testing.T) {
			_, err := flow.CompleteBatch(context.Background(), &dto.CompleteBatchRequest{
				DeviceID: claimed.DeviceID,
				BatchID:  &batch.ID,
			})
			require.NoError(t, err)

			batchLinks, err := linkRepo.ListByBatch(context.Background(), user.ID, batch.ID)
			require.NoError(t, err)
			for _, link := range batchLinks {
				require.NotNil(t, link.ProcessingStatus)
				assert.Equal(t, models.LinkProcessingCompleted, *link.ProcessingStatus)
			}
		})

		t.Run("DeviceWithoutContactGetsNoBatches", func(t *testing.T) {
			minted, err := flow.MintRegistrationToken(context.Background(), &dto.MintRegistrationTokenRequest{
				UserID: user.ID,
			}, testMetadata())
			require.NoError(t, err)
			orphan, err := flow.Claim(context.Background(), &dto.ClaimDeviceRequest{RegistrationToken: minted.Token}, testMetadata())
			require.NoError(t, err)

			_, err = flow.PwaBatches(context.Background(), orphan.DeviceID)
			require.Error(t, err)
			assert.True(t, businessflow.IsDeviceContactNotAssigned(err))
		})

		return nil
	})
	require.NoError(t, err)
}
