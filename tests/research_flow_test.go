// Package tests contains integration tests for the research import pipeline
package tests

import (
	"context"
	"testing"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	testingutil "github.com/hanifmaulana/distrolink/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResearchFlow(testDB *testingutil.TestDB) businessflow.ResearchFlow {
	return businessflow.NewResearchFlow(
		repository.NewLinkRepository(testDB.DB),
		repository.NewArchivedLinkRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		nil,
		testDB.DB,
	)
}

const researchCSVHeader = "Tren,isAd,Penjualan (30 Hari),productLink\n"

func TestResearchUpload(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		flow := newResearchFlow(testDB)

		t.Run("FiltersAndRanks", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			csvData := researchCSVHeader +
				"NAIK,NO,500,https://shop.example.com/a\n" +
				"NAIK,NO,900,https://shop.example.com/b\n" +
				"NAIK,NO,100,https://shop.example.com/c\n" +
				"TURUN,NO,9999,https://shop.example.com/d\n" + // falling trend dropped
				"TURUN,YES,1,https://shop.example.com/e\n" + // falling drops ads too
				"NAIK,YES,1,https://shop.example.com/f\n" +
				",NO,100,\n" // missing link dropped

			resp, err := flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   2,
				Files:  []dto.ResearchFile{{Name: "riset.csv", Content: []byte(csvData)}},
			}, testMetadata())
			require.NoError(t, err)

			// One ad (f) plus top-2 organic risers by sales (b, a)
			assert.Equal(t, 3, resp.Added)
			urls, err := linkRepo.URLsForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{
				"https://shop.example.com/a",
				"https://shop.example.com/b",
				"https://shop.example.com/f",
			}, urls)
		})

		t.Run("RankAppliesPerFile", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			fileA := researchCSVHeader +
				"NAIK,NO,300,https://shop.example.com/a1\n" +
				"NAIK,NO,200,https://shop.example.com/a2\n" +
				"NAIK,NO,100,https://shop.example.com/a3\n"
			fileB := researchCSVHeader +
				"NAIK,NO,30,https://shop.example.com/b1\n" +
				"NAIK,NO,20,https://shop.example.com/b2\n" +
				"NAIK,NO,10,https://shop.example.com/b3\n"

			resp, err := flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   2,
				Files: []dto.ResearchFile{
					{Name: "riset-a.csv", Content: []byte(fileA)},
					{Name: "riset-b.csv", Content: []byte(fileB)},
				},
			}, testMetadata())
			require.NoError(t, err)

			// Each sheet keeps its own top-2; b1/b2 are not crowded
			// out by the higher sales in the first sheet
			assert.Equal(t, 4, resp.Added)
			urls, err := linkRepo.URLsForUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{
				"https://shop.example.com/a1",
				"https://shop.example.com/a2",
				"https://shop.example.com/b1",
				"https://shop.example.com/b2",
			}, urls)
		})

		t.Run("DeduplicatesAgainstPoolAndArchive", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			// Pre-existing pool link and archived link
			require.NoError(t, testDB.DB.Create(&models.Link{
				UserID: user.ID,
				URL:    "https://shop.example.com/pool",
				Status: models.LinkStatusAvailable,
			}).Error)
			require.NoError(t, testDB.DB.Create(&models.ArchivedLink{
				UserID: user.ID,
				URL:    "https://shop.example.com/archived",
			}).Error)

			csvData := researchCSVHeader +
				"NAIK,NO,100,https://shop.example.com/pool\n" +
				"NAIK,NO,200,https://shop.example.com/archived\n" +
				"NAIK,NO,300,https://shop.example.com/new\n"

			resp, err := flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   10,
				Files:  []dto.ResearchFile{{Name: "riset.csv", Content: []byte(csvData)}},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Added)
			assert.Equal(t, 2, resp.Duplicates)
		})

		t.Run("UnsupportedFileSkipped", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			csvData := researchCSVHeader + "NAIK,NO,100,https://shop.example.com/x\n"

			resp, err := flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   10,
				Files: []dto.ResearchFile{
					{Name: "notes.txt", Content: []byte("not tabular")},
					{Name: "riset.csv", Content: []byte(csvData)},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Skipped)
			assert.Equal(t, 1, resp.Added)
		})

		t.Run("MissingColumnsFileSkipped", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			goodData := researchCSVHeader + "NAIK,NO,100,https://shop.example.com/y\n"
			badData := "foo,bar\n1,2\n"

			resp, err := flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   10,
				Files: []dto.ResearchFile{
					{Name: "wrong-columns.csv", Content: []byte(badData)},
					{Name: "riset.csv", Content: []byte(goodData)},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.Skipped)
			assert.Equal(t, 1, resp.Added)
		})

		t.Run("AllFilesUnparsable", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   10,
				Files:  []dto.ResearchFile{{Name: "notes.txt", Content: []byte("nope")}},
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUnsupportedFileType(err))
		})

		t.Run("NoFiles", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = flow.Upload(context.Background(), &dto.ResearchUploadRequest{
				UserID: user.ID,
				Rank:   10,
				Files:  nil,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoFilesUploaded(err))
		})

		return nil
	})
	require.NoError(t, err)
}
