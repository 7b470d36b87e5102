package models

// Result is the uniform envelope for single-value contracts. Error is
// authoritative: when it is non-null, Data is null.
type Result struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// ListResult is the envelope for paginated listings. TotalCount is the size
// of the filtered set, not of the page.
type ListResult struct {
	Data       any     `json:"data"`
	TotalCount int     `json:"totalCount"`
	Error      *string `json:"error"`
}

type UploadImageResponse struct {
	Success bool   `json:"success"`
	FileURL string `json:"fileUrl,omitempty"`
	FileID  string `json:"fileId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DeleteImageResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeletionPreview describes what DeleteSite would remove. It is read-only.
type DeletionPreview struct {
	Site               *Site       `json:"site"`
	HasOperationalInfo bool        `json:"has_operational_info"`
	PromotionCount     int         `json:"promotion_count"`
	EventCount         int         `json:"event_count"`
	Logo               *StoredFile `json:"logo"`
	// RetainedThumbnails are event thumbnail file ids that stay in storage
	// after the site and its events are gone.
	RetainedThumbnails []string `json:"retained_thumbnails"`
	Warnings           []string `json:"warnings,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
