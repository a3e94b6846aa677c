// Package tests contains integration tests for delivery finalization
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

func newDeliveryFlow(testDB *testingutil.TestDB) businessflow.DeliveryFlow {
	return businessflow.NewDeliveryFlow(
		repository.NewBatchRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewContactRepository(testDB.DB),
		repository.NewDeliveryRecordRepository(testDB.DB),
		repository.NewArchivedLinkRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		businessflow.NewOwnerLocker(nil),
		nil,
		testDB.DB,
	)
}

func TestMarkSent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		recordRepo := repository.NewDeliveryRecordRepository(testDB.DB)
		archivedRepo := repository.NewArchivedLinkRepository(testDB.DB)
		flow := newDeliveryFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		t.Run("RecordsArchivesAndClears", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(user.ID, "Batch #1", 100, &contact.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batch.ID, 5)
			require.NoError(t, err)

			resp, err := flow.MarkSent(context.Background(), &dto.MarkSentRequest{
				UserID:  user.ID,
				BatchID: &batch.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 5, resp.LinkCount)

			// History row with denormalized contact name
			records, err := recordRepo.RecentForUser(context.Background(), user.ID, 10)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "Siti Rahma", records[0].ContactName)
			assert.Equal(t, "Batch #1", records[0].BatchLabel)
			assert.Equal(t, 5, records[0].LinkCount)

			// URLs archived for future deduplication
			archived, err := archivedRepo.URLsForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, archived, 5)

			// Links removed, batch emptied
			links, err := linkRepo.ListByBatch(context.Background(), user.ID, batch.ID)
			require.NoError(t, err)
			assert.Empty(t, links)
		})

		t.Run("RepeatCallIsSilentNoop", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(user.ID, "Batch #2", 100, &contact.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batch.ID, 3)
			require.NoError(t, err)

			first, err := flow.MarkSent(context.Background(), &dto.MarkSentRequest{
				UserID:  user.ID,
				BatchID: &batch.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 3, first.LinkCount)

			// The batch is now empty: a second call must not double-log
			second, err := flow.MarkSent(context.Background(), &dto.MarkSentRequest{
				UserID:  user.ID,
				BatchID: &batch.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 0, second.LinkCount)

			records, err := recordRepo.RecentForUser(context.Background(), user.ID, 10)
			require.NoError(t, err)
			count := 0
			for _, r := range records {
				if r.BatchID == batch.ID {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})

		t.Run("BatchWithoutContactIsNoop", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(user.ID, "Batch #3", 100, nil)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batch.ID, 4)
			require.NoError(t, err)

			resp, err := flow.MarkSent(context.Background(), &dto.MarkSentRequest{
				UserID:  user.ID,
				BatchID: &batch.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 0, resp.LinkCount)

			// Links stay assigned
			links, err := linkRepo.ListByBatch(context.Background(), user.ID, batch.ID)
			require.NoError(t, err)
			assert.Len(t, links, 4)
		})

		t.Run("UnknownBatch", func(t *testing.T) {
			unknown := uint(999999)
			_, err := flow.MarkSent(context.Background(), &dto.MarkSentRequest{
				UserID:  user.ID,
				BatchID: &unknown,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBatchNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
