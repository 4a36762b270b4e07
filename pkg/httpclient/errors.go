package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/medigo/backend/pkg/errors"
)

const maxErrorBody = 1 << 20

// upstreamError matches the two error shapes seen from JSON APIs:
// {"error":"text"} and {"error":{"code":"...","message":"..."}}.
type upstreamError struct {
	Error json.RawMessage `json:"error"`
}

func (u upstreamError) message() string {
	if len(u.Error) == 0 || string(u.Error) == "null" {
		return ""
	}
	var text string
	if json.Unmarshal(u.Error, &text) == nil {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(u.Error, &obj) == nil {
		return obj.Message
	}
	return ""
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns an AppError describing it. 503 maps to ServiceUnavailable; every
// other status maps to a 502 Upstream error.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.Upstream(service, fmt.Errorf("status %d (read body: %w)", resp.StatusCode, err))
	}

	detail := strings.TrimSpace(string(body))
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil {
		if msg := parsed.message(); msg != "" {
			detail = msg
		}
	}
	if len(detail) > 512 {
		detail = detail[:512]
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		appErr := apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable", service))
		appErr.Err = fmt.Errorf("%w: status 503: %s", apperrors.ErrServiceUnavail, detail)
		return appErr
	}
	return apperrors.Upstream(service, fmt.Errorf("status %d: %s", resp.StatusCode, detail))
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
