package model

import "time"

type MaterialType string

const (
	MaterialPDF   MaterialType = "pdf"
	MaterialPPTX  MaterialType = "pptx"
	MaterialDOCX  MaterialType = "docx"
	MaterialVideo MaterialType = "video"
)

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialPDF, MaterialPPTX, MaterialDOCX, MaterialVideo:
		return true
	}
	return false
}

// Material is a course resource. Files are never stored; URL points at
// wherever the teacher published it.
type Material struct {
	ID          int64        `json:"id"`
	CourseID    int64        `json:"course_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        MaterialType `json:"type"`
	URL         string       `json:"url"`
	Size        string       `json:"size"`
	UploadDate  time.Time    `json:"upload_date"`
	CreatedAt   time.Time    `json:"created_at"`
}
