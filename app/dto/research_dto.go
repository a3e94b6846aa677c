package dto

// ResearchUploadRequest carries the parsed parts of a research upload.
// Files arrive as multipart uploads; the handler hands the flow raw
// bytes plus the original filename so the flow can pick a parser.
type ResearchUploadRequest struct {
	UserID uint           `json:"-"`
	Rank   int            `json:"rank" validate:"required,gte=1,lte=10000"`
	Files  []ResearchFile `json:"-" validate:"required,min=1"`
}

// ResearchFile is one uploaded tabular file
type ResearchFile struct {
	Name    string
	Content []byte
}

// ResearchUploadResponse reports import results
type ResearchUploadResponse struct {
	Message    string `json:"message"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped_files"`
}
