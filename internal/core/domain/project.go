package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Project is a server-owned aggregate grouping one title/context with the
// uploaded images, documents, and derived analysis. The client never mutates
// a project; it is fetched, held in memory for the session, and discarded on
// navigation.
type Project struct {
	ProjectID string          `json:"project_id"`
	Title     string          `json:"title"`
	Context   string          `json:"context"`
	CreatedAt time.Time       `json:"created_at"`
	Images    []ImageRef      `json:"images"`
	Documents []DocumentRef   `json:"documents"`
	Metadata  ProjectMetadata `json:"metadata"`

	// Scope tags the owner scope the project was listed under, so later
	// navigation routes to the correct scope-qualified URL. Set by the
	// aggregator, not the backend.
	Scope string `json:"-"`
}

// ProjectMetadata carries the backend's counts and flags.
type ProjectMetadata struct {
	ImageCount   int  `json:"image_count"`
	TotalFiles   int  `json:"total_files"`
	HasImages    bool `json:"has_images"`
	HasDocuments bool `json:"has_documents"`
}

// ProjectStub is one entry of the project index returned by the listing
// endpoint. Only the id is required; the rest is advisory.
type ProjectStub struct {
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Context   string `json:"context"`
}

// ImageRef is a displayable image in one of two historical shapes: the
// current structured object, or a legacy single-key object pairing a
// filename with a raw URL.
type ImageRef struct {
	Filename       string
	PresignedURL   string
	StorageURL     string
	AnalysisResult string
	Description    string // comma-separated description list
	UploadIndex    *int

	// Legacy shape fields; set only when the structured fields are absent.
	LegacyKey   string
	LegacyValue string
}

// imageRefWire is the structured image shape on the wire.
type imageRefWire struct {
	Filename         string          `json:"filename"`
	PresignedURL     string          `json:"presigned_url"`
	S3URL            string          `json:"s3_url"`
	AnalysisResult   string          `json:"analysis_result"`
	ImageDescription string          `json:"image_description"`
	UploadIndex      json.RawMessage `json:"upload_index"`
}

// UnmarshalJSON accepts both the structured and the legacy image shape.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var wire imageRefWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.PresignedURL != "" || wire.S3URL != "" || wire.Filename != "" {
		r.Filename = wire.Filename
		r.PresignedURL = wire.PresignedURL
		r.StorageURL = wire.S3URL
		r.AnalysisResult = wire.AnalysisResult
		r.Description = wire.ImageDescription
		r.UploadIndex = parseUploadIndex(wire.UploadIndex)
		return nil
	}

	key, raw, ok := firstObjectEntry(data)
	if !ok {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		// Non-string legacy value; keep the raw text so the caller can
		// still show something.
		value = string(raw)
	}
	r.LegacyKey = key
	r.LegacyValue = value
	return nil
}

// URL resolves the best displayable URL: a signed temporary URL over the raw
// storage URL over the legacy map value.
func (r ImageRef) URL() string {
	switch {
	case r.PresignedURL != "":
		return r.PresignedURL
	case r.StorageURL != "":
		return r.StorageURL
	default:
		return r.LegacyValue
	}
}

// parseUploadIndex tolerates both numeric and string upload_index values.
func parseUploadIndex(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
			return &n
		}
	}
	return nil
}

// LegacyValueKind describes what a legacy document's value turned out to be.
type LegacyValueKind int

const (
	LegacyValueNone LegacyValueKind = iota
	// LegacyValueInline is plain text carried directly in the value.
	LegacyValueInline
	// LegacyValueRemote is an http(s) or object-storage reference that
	// must be fetched before it can be displayed.
	LegacyValueRemote
	// LegacyValueObject is a nested object that may itself carry
	// content/text/analysis_result fields.
	LegacyValueObject
)

// LegacyDocValue is the value side of a legacy key/value document.
type LegacyDocValue struct {
	Kind LegacyValueKind
	Text string // inline text or the remote reference
	// Object fields, populated when Kind == LegacyValueObject.
	Content        string
	ObjectText     string
	AnalysisResult string
	Raw            json.RawMessage
}

// DocumentRef is a document in one of two historical shapes: a structured
// object already carrying text, or a legacy key/value pair whose value may
// be inline text, a remote reference, or a nested object.
type DocumentRef struct {
	Filename       string
	AnalysisResult string
	Content        string
	Text           string

	LegacyKey   string
	LegacyValue LegacyDocValue
}

// IsLegacy reports whether this document uses the legacy key/value shape.
func (d DocumentRef) IsLegacy() bool {
	return d.LegacyKey != ""
}

// UnmarshalJSON accepts both document shapes. For the legacy shape the first
// key in document order is taken, matching how the backend emits the
// single-entry objects.
func (d *DocumentRef) UnmarshalJSON(data []byte) error {
	var wire struct {
		Filename       string `json:"filename"`
		AnalysisResult string `json:"analysis_result"`
		Content        string `json:"content"`
		Text           string `json:"text"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.AnalysisResult != "" || wire.Content != "" || wire.Text != "" {
		d.Filename = wire.Filename
		d.AnalysisResult = wire.AnalysisResult
		d.Content = wire.Content
		d.Text = wire.Text
		return nil
	}

	key, raw, ok := firstObjectEntry(data)
	if !ok {
		return nil
	}
	d.LegacyKey = key
	d.LegacyValue = parseLegacyValue(raw)
	return nil
}

// IsRemoteRef reports whether a legacy document value points at remote
// content: an http(s) URL or an object-storage URI.
func IsRemoteRef(value string) bool {
	return strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "s3://")
}

func parseLegacyValue(raw json.RawMessage) LegacyDocValue {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		kind := LegacyValueInline
		if IsRemoteRef(s) {
			kind = LegacyValueRemote
		}
		return LegacyDocValue{Kind: kind, Text: s, Raw: raw}
	}

	var obj struct {
		Content        string `json:"content"`
		Text           string `json:"text"`
		AnalysisResult string `json:"analysis_result"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return LegacyDocValue{
			Kind:           LegacyValueObject,
			Content:        obj.Content,
			ObjectText:     obj.Text,
			AnalysisResult: obj.AnalysisResult,
			Raw:            raw,
		}
	}

	return LegacyDocValue{Kind: LegacyValueInline, Text: string(raw), Raw: raw}
}

// firstObjectEntry returns the first key and raw value of a JSON object in
// document order. Map decoding would randomize the order, so the token
// stream is walked directly.
func firstObjectEntry(data []byte) (string, json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return "", nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", nil, false
	}
	if !dec.More() {
		return "", nil, false
	}
	keyTok, err := dec.Token()
	if err != nil {
		return "", nil, false
	}
	key, ok := keyTok.(string)
	if !ok {
		return "", nil, false
	}
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", nil, false
	}
	return key, raw, true
}
