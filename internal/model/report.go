package model

import (
	"image"
	"strings"
)

type FileKind string

const (
	KindImage FileKind = "image"
	KindPDF   FileKind = "pdf"
)

// ParseFileKind accepts the selector values shown in the UI ("Image", "PDF")
// as well as the lower-case kinds.
func ParseFileKind(raw string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "image":
		return KindImage, true
	case "pdf":
		return KindPDF, true
	}
	return "", false
}

// UploadedFile is a report as received from the user. It lives for one
// analyze action.
type UploadedFile struct {
	Name string
	Kind FileKind
	Data []byte
}

// ExtractedContent is either a decoded image or the concatenated page text of
// a PDF, depending on Kind.
type ExtractedContent struct {
	Kind FileKind
	Text string

	Image       image.Image
	ImageData   []byte
	ImageFormat string
}
