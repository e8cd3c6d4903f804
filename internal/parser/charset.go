package parser

import (
	"io"
	"mime"

	"golang.org/x/net/html/charset"
)

// defaultJSONContentType is assumed when a response does not declare a charset.
// JSON is UTF-8 by definition, so content sniffing would only risk a wrong guess.
const defaultJSONContentType = "application/json; charset=utf-8"

// NewUTF8Reader wraps an API response body so that it is decoded to UTF-8
// according to the charset declared in contentType (e.g. "application/json; charset=iso-8859-1").
//
// When contentType is empty, unparsable, or carries no charset parameter the body is
// treated as UTF-8 and passed through with minimal overhead.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, normalizeContentType(contentType))
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return defaultJSONContentType
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultJSONContentType
	}
	if _, ok := params["charset"]; !ok {
		return defaultJSONContentType
	}
	return contentType
}
