package anubis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"
)

func isCircuitFailure(err error) bool {
	return errors.Is(err, errAnubisTransient)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// requestDeadline picks the earlier of the context deadline and now+timeout.
func requestDeadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// buildURL resolves the introspection path against the base URL. An absolute
// path overrides the base.
func buildURL(baseURL, path string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	joined, err := url.JoinPath(baseURL, path)
	if err != nil {
		return baseURL + "/" + strings.TrimLeft(path, "/")
	}
	return joined
}
