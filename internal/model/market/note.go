package market

import "time"

// Note is an uploaded study-notes document.
type Note struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Subject       string    `json:"subject"`
	Unit          string    `json:"unit,omitempty"`
	Tags          []string  `json:"tags"`
	FilePath      string    `json:"filePath"`
	FileSize      int64     `json:"fileSize"`
	PageCount     int       `json:"pageCount,omitempty"`
	UploaderID    string    `json:"uploaderId"`
	DownloadCount int       `json:"downloadCount"`
	Rating        float64   `json:"rating"`
	RatingCount   int       `json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
