package storage

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Validator bounds what uploads the service accepts. All three checks
// must pass; the first failing check determines the error.
type Validator struct {
	maxSizeBytes int64
	allowedMIME  []string
	allowedExt   map[string]struct{}
}

// NewValidator creates a Validator. Extensions are matched without the
// leading dot, case-insensitively.
func NewValidator(maxSizeBytes int64, allowedMIME, allowedExt []string) *Validator {
	exts := make(map[string]struct{}, len(allowedExt))
	for _, e := range allowedExt {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return &Validator{
		maxSizeBytes: maxSizeBytes,
		allowedMIME:  allowedMIME,
		allowedExt:   exts,
	}
}

// Validate checks size, then the actual binary signature, then the
// filename extension. The MIME check inspects the leading bytes of the
// content rather than trusting the filename or a client-declared type,
// so a renamed executable fails even with an allowed extension.
func (v *Validator) Validate(name string, data []byte) error {
	if int64(len(data)) > v.maxSizeBytes {
		return NewValidationError("file size %d exceeds maximum allowed size of %d bytes", len(data), v.maxSizeBytes)
	}

	detected := mimetype.Detect(data)
	if !v.mimeAllowed(detected) {
		return NewValidationError("invalid file type %q, allowed types: %s",
			detected.String(), strings.Join(v.allowedMIME, ", "))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := v.allowedExt[ext]; !ok {
		return NewValidationError("invalid file extension %q", ext)
	}

	return nil
}

// DetectContentType returns the sniffed MIME type of data.
func (v *Validator) DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

func (v *Validator) mimeAllowed(detected *mimetype.MIME) bool {
	for _, allowed := range v.allowedMIME {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}
