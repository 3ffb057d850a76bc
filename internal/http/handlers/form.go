// Mutation body parsing.
//
// Create and delete submissions arrive as a transport-encoded key/value body
// ("content=...&oneTimeToken=..." or "id=...&oneTimeToken=..."). The wire
// convention, kept for compatibility with existing clients, is to
// percent-decode the WHOLE body first and split on "&" second, the reverse
// of standard form parsing. A consequence is that "+" survives decoding and
// is only turned back into a space at display time.
package handlers

import (
	"errors"
	"net/url"
	"strings"
)

// errMalformedBody signals a body that cannot be percent-decoded or that is
// missing the expected fields.
var errMalformedBody = errors.New("malformed request body")

// parseMutationBody extracts the value of firstField and the one-time token
// from a raw request body. firstField is "content" for creates and "id" for
// deletes; field order on the wire is fixed (value first, token second).
func parseMutationBody(body []byte, firstField string) (value, token string, err error) {
	// Whole-body decode before any splitting. PathUnescape decodes %XX but
	// leaves "+" alone, matching the historical decoder.
	decoded, err := url.PathUnescape(string(body))
	if err != nil {
		return "", "", errMalformedBody
	}

	segments := strings.Split(decoded, "&")
	if len(segments) > 0 {
		value = fieldValue(segments[0], firstField)
	}
	if len(segments) > 1 {
		token = fieldValue(segments[1], "oneTimeToken")
	}
	if token == "" {
		return "", "", errMalformedBody
	}
	return value, token, nil
}

// fieldValue returns everything after the first "key=" in segment, or ""
// when the key is absent.
func fieldValue(segment, key string) string {
	parts := strings.SplitN(segment, key+"=", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
