package api

import (
	"dupescan/models"
)

// DeleteFileRequest is the body of POST /delete-file.
type DeleteFileRequest struct {
	FilePath string `json:"filePath"`
}

// DeleteFileResponse is the structured outcome of a delete request.
type DeleteFileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Pagination describes the page window of a duplicates response.
type Pagination struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	TotalGroups int  `json:"total_groups"`
	TotalPages  int  `json:"total_pages"`
	HasMore     bool `json:"has_more"`
}

// DuplicatesResponse is the paginated duplicate-group listing.
type DuplicatesResponse struct {
	Data       [][]models.FileRecord `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// StatsResponse is a small summary of the persisted state.
type StatsResponse struct {
	TotalGroups int `json:"total_groups"`
}
