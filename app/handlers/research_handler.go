package handlers

import (
	"io"
	"log"
	"strconv"

	"github.com/hanifmaulana/distrolink/app/dto"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ResearchHandlerInterface defines the contract for research import handlers
type ResearchHandlerInterface interface {
	Upload(c fiber.Ctx) error
}

// ResearchHandler handles research sheet uploads
type ResearchHandler struct {
	researchFlow businessflow.ResearchFlow
	validator    *validator.Validate
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(researchFlow businessflow.ResearchFlow) *ResearchHandler {
	return &ResearchHandler{
		researchFlow: researchFlow,
		validator:    validator.New(),
	}
}

// Upload imports one or more research sheets into the link pool.
// Multipart form: "rank" field plus one or more "files" parts.
func (h *ResearchHandler) Upload(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid multipart form", "INVALID_FORM", err.Error())
	}

	rank := 0
	if values := form.Value["rank"]; len(values) > 0 {
		rank, err = strconv.Atoi(values[0])
		if err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "Invalid rank value", "INVALID_RANK", nil)
		}
	}

	req := dto.ResearchUploadRequest{
		UserID: userID,
		Rank:   rank,
	}

	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "FILE_READ_FAILED", header.Filename)
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "FILE_READ_FAILED", header.Filename)
		}
		req.Files = append(req.Files, dto.ResearchFile{
			Name:    header.Filename,
			Content: content,
		})
	}

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.researchFlow.Upload(createRequestContext(c, "/api/v1/research/upload"), &req, metadata)
	if err != nil {
		if businessflow.IsNoFilesUploaded(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "No files uploaded", "NO_FILES", nil)
		}
		if businessflow.IsUnsupportedFileType(err) {
			return ErrorResponse(c, fiber.StatusBadRequest, "Unsupported file type", "UNSUPPORTED_FILE_TYPE", nil)
		}

		log.Println("Research upload failed", err)
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import research links", "RESEARCH_IMPORT_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
