// backend/src/security/validation/file_validation.go
package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/cashrecon/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true, // Some browsers send the legacy type for .xlsx
	"application/octet-stream": true, // Drag-and-drop uploads often lose the MIME type
	"text/csv":                 false,
	"text/plain":               false,
}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	base := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if allowed, exists := AllowedClientContentTypes[base]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for xlsx upload", contentType)
	}
	return nil
}

// xlsx files are zip archives; every valid one starts with the local
// file header signature.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ValidateXlsxContent checks the actual file content signature (magic
// bytes). The declared Content-Type is client-controlled; this is not.
// The reader is rewound before returning.
func ValidateXlsxContent(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(zipMagic))
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read file for content checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file after content checking: %w", err)
	}
	if n < len(zipMagic) || !bytes.Equal(buffer[:len(zipMagic)], zipMagic) {
		return fmt.Errorf("file content is not a valid xlsx workbook")
	}
	return nil
}
