// Package tests contains integration tests for the batch registry and link allocator
package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDistributionFlow(testDB *testingutil.TestDB) businessflow.DistributionFlow {
	return businessflow.NewDistributionFlow(
		repository.NewBatchRepository(testDB.DB),
		repository.NewLinkRepository(testDB.DB),
		repository.NewContactRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		businessflow.NewOwnerLocker(nil),
		nil,
		testDB.DB,
	)
}

func resizeTo(t *testing.T, flow businessflow.DistributionFlow, userID uint, desired int) *dto.ResizeBatchesResponse {
	t.Helper()
	resp, err := flow.ResizeBatches(context.Background(), &dto.ResizeBatchesRequest{
		UserID:       userID,
		DesiredCount: utils.ToPtr(desired),
	}, testMetadata())
	require.NoError(t, err)
	return resp
}

func TestResizeBatches(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		batchRepo := repository.NewBatchRepository(testDB.DB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		flow := newDistributionFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		t.Run("GrowFromEmpty", func(t *testing.T) {
			resp := resizeTo(t, flow, user.ID, 3)
			assert.Equal(t, 3, resp.Created)
			assert.Equal(t, 0, resp.Removed)

			batches, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, batches, 3)
			for i, batch := range batches {
				assert.Equal(t, fmt.Sprintf("Batch #%d", i+1), batch.Label)
				assert.Equal(t, models.DefaultBatchCapacity, batch.Capacity)
			}
		})

		t.Run("GrowContinuesNumbering", func(t *testing.T) {
			resp := resizeTo(t, flow, user.ID, 5)
			assert.Equal(t, 2, resp.Created)

			batches, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, batches, 5)
			assert.Equal(t, "Batch #4", batches[3].Label)
			assert.Equal(t, "Batch #5", batches[4].Label)
		})

		t.Run("ShrinkReleasesTailLinks", func(t *testing.T) {
			batches, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, batches, 5)

			// Fill the last batch so the shrink has something to release
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batches[4].ID, 7)
			require.NoError(t, err)

			resp := resizeTo(t, flow, user.ID, 2)
			assert.Equal(t, 0, resp.Created)
			assert.Equal(t, 3, resp.Removed)
			assert.Equal(t, int64(7), resp.Released)

			remaining, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, remaining, 2)
			assert.Equal(t, "Batch #1", remaining[0].Label)
			assert.Equal(t, "Batch #2", remaining[1].Label)

			// Released links are back in the pool, not deleted
			pool, err := linkRepo.CountPoolForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(7), pool)
		})

		t.Run("ResizeToSameCountIsNoop", func(t *testing.T) {
			resp := resizeTo(t, flow, user.ID, 2)
			assert.Equal(t, 0, resp.Created)
			assert.Equal(t, 0, resp.Removed)
		})

		t.Run("ResizeToZeroRemovesAll", func(t *testing.T) {
			resp := resizeTo(t, flow, user.ID, 0)
			assert.Equal(t, 2, resp.Removed)

			batches, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Empty(t, batches)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDistribute(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		batchRepo := repository.NewBatchRepository(testDB.DB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		flow := newDistributionFlow(testDB)

		t.Run("FillsBatchesInCreationOrder", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			resizeTo(t, flow, user.ID, 3)
			_, err = fixtures.CreateTestLinks(user.ID, 250)
			require.NoError(t, err)

			resp, err := flow.Distribute(context.Background(), user.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 250, resp.Assigned)

			batches, err := batchRepo.ListWithFillCounts(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, batches, 3)
			assert.Equal(t, int64(100), batches[0].LinksCount)
			assert.Equal(t, int64(100), batches[1].LinksCount)
			assert.Equal(t, int64(50), batches[2].LinksCount)

			pool, err := linkRepo.CountPoolForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), pool)
		})

		t.Run("SkipsOverFullBatch", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			resizeTo(t, flow, user.ID, 2)
			batches, err := batchRepo.ListForUser(context.Background(), user.ID)
			require.NoError(t, err)

			// First batch already holds more links than its lowered capacity
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batches[0].ID, 10)
			require.NoError(t, err)
			batches[0].Capacity = 5
			require.NoError(t, batchRepo.Update(context.Background(), batches[0]))

			_, err = fixtures.CreateTestLinks(user.ID, 20)
			require.NoError(t, err)

			resp, err := flow.Distribute(context.Background(), user.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 20, resp.Assigned)

			filled, err := batchRepo.ListWithFillCounts(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(10), filled[0].LinksCount) // untouched
			assert.Equal(t, int64(20), filled[1].LinksCount)
		})

		t.Run("DistributeIsIdempotentWhenPoolEmpty", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			resizeTo(t, flow, user.ID, 1)

			resp, err := flow.Distribute(context.Background(), user.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 0, resp.Assigned)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateBatchAndState(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		batchRepo := repository.NewBatchRepository(testDB.DB)
		flow := newDistributionFlow(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		contact, err := fixtures.CreateTestContact(user.ID, "Siti Rahma")
		require.NoError(t, err)

		resizeTo(t, flow, user.ID, 1)
		batches, err := batchRepo.ListForUser(context.Background(), user.ID)
		require.NoError(t, err)
		batchID := batches[0].ID

		t.Run("AssignContactAndCapacity", func(t *testing.T) {
			resp, err := flow.UpdateBatch(context.Background(), &dto.UpdateBatchRequest{
				UserID:    user.ID,
				BatchID:   batchID,
				Capacity:  utils.ToPtr(40),
				ContactID: &contact.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 40, resp.Batch.Capacity)
			require.NotNil(t, resp.Batch.Contact)
			assert.Equal(t, contact.ID, resp.Batch.Contact.ID)
		})

		t.Run("ClearContact", func(t *testing.T) {
			resp, err := flow.UpdateBatch(context.Background(), &dto.UpdateBatchRequest{
				UserID:       user.ID,
				BatchID:      batchID,
				ClearContact: true,
			}, testMetadata())
			require.NoError(t, err)
			assert.Nil(t, resp.Batch.Contact)
		})

		t.Run("AssignUnknownContact", func(t *testing.T) {
			unknown := uint(999999)
			_, err := flow.UpdateBatch(context.Background(), &dto.UpdateBatchRequest{
				UserID:    user.ID,
				BatchID:   batchID,
				ContactID: &unknown,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsContactNotFound(err))
		})

		t.Run("StateAggregatesPoolBatchesAndContacts", func(t *testing.T) {
			_, err := flow.UpdateBatch(context.Background(), &dto.UpdateBatchRequest{
				UserID:    user.ID,
				BatchID:   batchID,
				ContactID: &contact.ID,
			}, testMetadata())
			require.NoError(t, err)

			_, err = fixtures.CreateTestLinks(user.ID, 12)
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignedLinks(user.ID, batchID, 4)
			require.NoError(t, err)

			state, err := flow.GetState(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(12), state.LinksInPool)
			require.Len(t, state.Batches, 1)
			assert.Equal(t, int64(4), state.Batches[0].LinksCount)
			require.NotNil(t, state.Batches[0].Contact)
			assert.Equal(t, contact.ID, state.Batches[0].Contact.ID)
			assert.Equal(t, "Siti Rahma", state.Batches[0].Contact.Name)
			require.Len(t, state.Contacts, 1)
			assert.Equal(t, contact.ID, state.Contacts[0].ID)
		})

		t.Run("ListBatchLinksEnforcesOwnership", func(t *testing.T) {
			other, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = flow.ListBatchLinks(context.Background(), other.ID, batchID)
			require.Error(t, err)
			assert.True(t, businessflow.IsBatchNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
