// Package tests contains integration tests for delivery history and workspace reset
package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardFlow(testDB *testingutil.TestDB) businessflow.DashboardFlow {
	return businessflow.NewDashboardFlow(
		repository.NewDeliveryRecordRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewArchivedLinkRepository(testDB.DB),
		repository.NewBatchRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		businessflow.NewOwnerLocker(nil),
		nil,
		testDB.DB,
	)
}

func TestDashboardHistory(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newDashboardFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		base := utils.UTCNow().Add(-1 * time.Hour)
		for i := 0; i < utils.DeliveryHistoryLimit+5; i++ {
			batch, err := fixtures.CreateTestBatch(user.ID, fmt.Sprintf("Batch #%d", i+1), 100, &contact.ID)
			require.NoError(t, err)
			record := &models.DeliveryRecord{
				UserID:      user.ID,
				ContactID:   &contact.ID,
				ContactName: contact.Name,
				BatchID:     batch.ID,
				BatchLabel:  batch.Label,
				LinkCount:   i + 1,
				CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, testDB.DB.Create(record).Error)
		}

		resp, err := flow.History(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Len(t, resp.Records, utils.DeliveryHistoryLimit)

		// Newest first
		assert.Equal(t, utils.DeliveryHistoryLimit+5, resp.Records[0].LinkCount)
		return nil
	})
	require.NoError(t, err)
}

func TestForceRestart(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newDashboardFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		batch, err := fixtures.CreateTestBatch(user.ID, "Batch #1", 100, &contact.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestAssignedLinks(user.ID, batch.ID, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLinks(user.ID, 3)
		require.NoError(t, err)
		_, err = fixtures.CreateTestDeliveryRecord(user.ID, contact, batch, 5)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Create(&models.ArchivedLink{
			UserID: user.ID,
			URL:    "https://shop.example.com/old",
		}).Error)
		device, err := fixtures.CreateTestDevice(user.ID, &contact.ID)
		require.NoError(t, err)

		_, err = flow.ForceRestart(context.Background(), user.ID, testMetadata())
		require.NoError(t, err)

		var count int64

		require.NoError(t, testDB.DB.Model(&models.Link{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
		require.NoError(t, testDB.DB.Model(&models.Batch{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
		require.NoError(t, testDB.DB.Model(&models.DeliveryRecord{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
		require.NoError(t, testDB.DB.Model(&models.ArchivedLink{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)

		// Contacts and devices survive the reset
		require.NoError(t, testDB.DB.Model(&models.Contact{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		require.NoError(t, testDB.DB.Model(&models.Device{}).Where("id = ?", device.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		return nil
	})
	require.NoError(t, err)
}
