package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/models"
	"github.com/hanifmaulana/distrolink/repository"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Research sheet column headers. Uploads come straight out of the
// owner's research tooling, so the header names are fixed.
const (
	researchColTrend = "Tren"
	researchColIsAd  = "isAd"
	researchColSales = "Penjualan (30 Hari)"
	researchColLink  = "productLink"
)

// ResearchFlow imports research sheets into the link pool
type ResearchFlow interface {
	Upload(ctx context.Context, req *dto.ResearchUploadRequest, metadata *ClientMetadata) (*dto.ResearchUploadResponse, error)
}

// ResearchFlowImpl implements the research import business flow
type ResearchFlowImpl struct {
	linkRepo     repository.LinkRepository
	archivedRepo repository.ArchivedLinkRepository
	auditRepo    repository.AuditLogRepository
	rc           *redis.Client
	db           *gorm.DB
}

// NewResearchFlow creates a new research flow instance
func NewResearchFlow(
	linkRepo repository.LinkRepository,
	archivedRepo repository.ArchivedLinkRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	db *gorm.DB,
) ResearchFlow {
	return &ResearchFlowImpl{
		linkRepo:     linkRepo,
		archivedRepo: archivedRepo,
		auditRepo:    auditRepo,
		rc:           rc,
		db:           db,
	}
}

// researchRow is one parsed sheet row
type researchRow struct {
	Trend string
	IsAd  bool
	Sales int
	URL   string
}

// Upload parses the uploaded sheets, filters rows by trend and ad
// status, keeps the top-rank organic risers by 30-day sales, dedupes
// against the pool and the delivered archive, and bulk-inserts the rest.
func (rf *ResearchFlowImpl) Upload(ctx context.Context, req *dto.ResearchUploadRequest, metadata *ClientMetadata) (*dto.ResearchUploadResponse, error) {
	if len(req.Files) == 0 {
		return nil, NewBusinessError("RESEARCH_VALIDATION_FAILED", "No files uploaded", ErrNoFilesUploaded)
	}

	var selected []researchRow
	skipped := 0

	// The rank cut applies per sheet: each file contributes its own
	// top-rank organic risers.
	for _, file := range req.Files {
		parsed, err := parseResearchFile(file)
		if err != nil {
			skipped++
			continue
		}
		selected = append(selected, selectResearchRows(parsed, req.Rank)...)
	}
	if skipped == len(req.Files) {
		return nil, NewBusinessError("RESEARCH_PARSE_FAILED", "No file could be parsed", ErrUnsupportedFileType)
	}

	resp := &dto.ResearchUploadResponse{Skipped: skipped}

	err := repository.WithTransaction(ctx, rf.db, func(txCtx context.Context) error {
		known := make(map[string]bool)

		poolURLs, err := rf.linkRepo.URLsForUser(txCtx, req.UserID)
		if err != nil {
			return err
		}
		for _, u := range poolURLs {
			known[u] = true
		}

		archivedURLs, err := rf.archivedRepo.URLsForUser(txCtx, req.UserID)
		if err != nil {
			return err
		}
		for _, u := range archivedURLs {
			known[u] = true
		}

		fresh := make([]*models.Link, 0, len(selected))
		for _, row := range selected {
			if known[row.URL] {
				resp.Duplicates++
				continue
			}
			known[row.URL] = true
			fresh = append(fresh, &models.Link{
				UserID:    req.UserID,
				URL:       row.URL,
				Status:    models.LinkStatusAvailable,
				CreatedAt: utils.UTCNow(),
				UpdatedAt: utils.UTCNow(),
			})
		}

		if err := rf.linkRepo.SaveBatch(txCtx, fresh); err != nil {
			return err
		}
		resp.Added = len(fresh)
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Research import failed: %s", err.Error())
		_ = createAuditLog(ctx, rf.auditRepo, &req.UserID, models.AuditActionResearchImported, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("RESEARCH_IMPORT_FAILED", "Failed to import research links", err)
	}

	if rf.rc != nil {
		_ = rf.rc.Del(ctx, distributionStateCacheKey(req.UserID)).Err()
	}

	msg := fmt.Sprintf("Imported %d links (%d duplicates, %d files skipped)", resp.Added, resp.Duplicates, resp.Skipped)
	_ = createAuditLog(ctx, rf.auditRepo, &req.UserID, models.AuditActionResearchImported, msg, true, nil, metadata)

	resp.Message = msg
	return resp, nil
}

// selectResearchRows applies the import policy: drop falling trends,
// keep every ad row, and keep the top-rank rising organic rows by
// 30-day sales.
func selectResearchRows(rows []researchRow, rank int) []researchRow {
	var ads, organic []researchRow
	for _, row := range rows {
		if row.URL == "" || strings.EqualFold(row.Trend, "TURUN") {
			continue
		}
		if row.IsAd {
			ads = append(ads, row)
			continue
		}
		if strings.EqualFold(row.Trend, "NAIK") {
			organic = append(organic, row)
		}
	}

	sort.SliceStable(organic, func(i, j int) bool {
		return organic[i].Sales > organic[j].Sales
	})
	if rank > 0 && len(organic) > rank {
		organic = organic[:rank]
	}

	return append(ads, organic...)
}

func parseResearchFile(file dto.ResearchFile) ([]researchRow, error) {
	name := strings.ToLower(file.Name)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return parseResearchCSV(file.Content)
	case strings.HasSuffix(name, ".xlsx"):
		return parseResearchXLSX(file.Content)
	default:
		return nil, ErrUnsupportedFileType
	}
}

func parseResearchCSV(content []byte) ([]researchRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return rowsFromRecords(records)
}

func parseResearchXLSX(content []byte) ([]researchRow, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer func() { _ = xl.Close() }()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingSheetColumns
	}

	records, err := xl.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	return rowsFromRecords(records)
}

// rowsFromRecords maps header-indexed records to researchRow values.
// A sheet without the expected header columns is rejected; rows missing
// the link column are dropped.
func rowsFromRecords(records [][]string) ([]researchRow, error) {
	if len(records) == 0 {
		return nil, ErrMissingSheetColumns
	}
	header := records[0]
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range []string{researchColTrend, researchColIsAd, researchColSales, researchColLink} {
		if _, ok := index[col]; !ok {
			return nil, ErrMissingSheetColumns
		}
	}

	cell := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]researchRow, 0, len(records)-1)
	for _, record := range records[1:] {
		url := cell(record, researchColLink)
		if url == "" {
			continue
		}
		sales, _ := strconv.Atoi(strings.ReplaceAll(cell(record, researchColSales), ",", ""))
		rows = append(rows, researchRow{
			Trend: cell(record, researchColTrend),
			IsAd:  strings.EqualFold(cell(record, researchColIsAd), "YES"),
			Sales: sales,
			URL:   url,
		})
	}
	return rows, nil
}
