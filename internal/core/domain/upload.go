package domain

import (
	"fmt"
	"strings"
)

// FileCategory classifies an upload file into one of the three bundle slots.
type FileCategory string

const (
	CategoryImage       FileCategory = "image"
	CategoryDocument    FileCategory = "document"
	CategorySpreadsheet FileCategory = "spreadsheet"
	CategoryUnknown     FileCategory = "unknown"
)

// File is a single file selected for upload.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Category classifies a file by MIME type first, filename extension second.
func (f File) Category() FileCategory {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	name := strings.ToLower(f.Name)

	switch {
	case strings.HasPrefix(ct, "image/"):
		return CategoryImage
	case ct == "text/plain" || ct == "application/pdf",
		strings.HasSuffix(name, ".txt"), strings.HasSuffix(name, ".pdf"):
		return CategoryDocument
	case ct == "application/vnd.ms-excel",
		ct == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		strings.HasSuffix(name, ".xls"), strings.HasSuffix(name, ".xlsx"):
		return CategorySpreadsheet
	default:
		return CategoryUnknown
	}
}

// FileBundle holds the selected upload files per category.
// Order within images and documents is semantically meaningful: image
// descriptions are mapped to images by upload order.
type FileBundle struct {
	Images      []File
	Documents   []File
	Spreadsheet *File
}

// AddImages appends files that classify as images, preserving selection
// order. Files of any other category are returned so the caller can warn.
func (b *FileBundle) AddImages(files ...File) (rejected []File) {
	for _, f := range files {
		if f.Category() == CategoryImage {
			b.Images = append(b.Images, f)
		} else {
			rejected = append(rejected, f)
		}
	}
	return rejected
}

// AddDocuments appends files that classify as documents, preserving
// selection order. Rejected files are returned for the caller to warn.
func (b *FileBundle) AddDocuments(files ...File) (rejected []File) {
	for _, f := range files {
		if f.Category() == CategoryDocument {
			b.Documents = append(b.Documents, f)
		} else {
			rejected = append(rejected, f)
		}
	}
	return rejected
}

// SetSpreadsheet replaces the single spreadsheet slot.
func (b *FileBundle) SetSpreadsheet(f File) error {
	if f.Category() != CategorySpreadsheet {
		return fmt.Errorf("%w: %s is not a valid spreadsheet file (.xls or .xlsx)", ErrValidation, f.Name)
	}
	b.Spreadsheet = &f
	return nil
}

// RemoveImage removes the image at index i. Out-of-range indexes are ignored.
func (b *FileBundle) RemoveImage(i int) {
	if i < 0 || i >= len(b.Images) {
		return
	}
	b.Images = append(b.Images[:i], b.Images[i+1:]...)
}

// RemoveDocument removes the document at index i. Out-of-range indexes are
// ignored.
func (b *FileBundle) RemoveDocument(i int) {
	if i < 0 || i >= len(b.Documents) {
		return
	}
	b.Documents = append(b.Documents[:i], b.Documents[i+1:]...)
}

// ClearSpreadsheet empties the spreadsheet slot.
func (b *FileBundle) ClearSpreadsheet() {
	b.Spreadsheet = nil
}

// HasFiles reports whether at least one file is present in any category.
func (b *FileBundle) HasFiles() bool {
	return len(b.Images) > 0 || len(b.Documents) > 0 || b.Spreadsheet != nil
}

// UploadForm carries the user-entered metadata for a submission.
type UploadForm struct {
	Title             string
	Context           string
	ImageDescriptions string // comma-separated, mapped to images by upload order
}

// Submission is a validated upload request for one owner scope.
type Submission struct {
	Scope string // owning user/tenant scope
	Form  UploadForm
	Files FileBundle
}

// Validate applies the local submission gate: a non-empty title and at least
// one file across the three categories. Gate failures never reach the
// network.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Form.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !s.Files.HasFiles() {
		return fmt.Errorf("%w: at least one file (image, document, or spreadsheet) must be uploaded", ErrValidation)
	}
	return nil
}
