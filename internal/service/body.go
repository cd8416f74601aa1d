package service

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// ValidateBody checks that a POST body parses as its declared media type.
// Only JSON is checked. Forms and other types pass through unchecked, since
// a lenient form parser keeps malformed escapes and semicolons as literal text.
// The body itself is always forwarded unchanged.
func ValidateBody(contentType string, body []byte) error {
	if len(body) == 0 || contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		if !json.Valid(body) {
			return fmt.Errorf("%w: malformed JSON", ErrInvalidBody)
		}
	}
	return nil
}
