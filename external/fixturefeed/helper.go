package fixturefeed

import (
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
)

func isCircuitFailure(err error) bool {
	return errors.Is(err, errFeedTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(raw string) string {
	return apiTokenParamRegex.ReplaceAllString(raw, "api_token=REDACTED")
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) <= maxLoggedBody {
		return body
	}
	return body[:maxLoggedBody] + "..."
}
