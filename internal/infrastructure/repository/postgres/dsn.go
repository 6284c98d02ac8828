package postgres

import (
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// DSNOptions are connection parameters DSN adds when the URL lacks them.
type DSNOptions struct {
	DisablePreparedBinaryResult bool
	ApplicationName             string
}

// DSN fills in connection parameters that are missing from a URL-style
// DSN. Explicit query values always win. Key/value DSNs are returned as is.
func DSN(raw string, opts DSNOptions) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	changed := false
	setDefault := func(key, value string) {
		if value == "" || query.Has(key) {
			return
		}
		query.Set(key, value)
		changed = true
	}
	if opts.DisablePreparedBinaryResult {
		setDefault("disable_prepared_binary_result", "yes")
	}
	setDefault("application_name", opts.ApplicationName)

	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// DatabaseName accepts both URL and key/value DSNs.
func DatabaseName(raw string) string {
	dsn := strings.TrimSpace(raw)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return ""
		}
		dsn = converted
	}

	for _, token := range strings.Fields(dsn) {
		name, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		if name = strings.Trim(name, `"'`); name != "" {
			return name
		}
	}
	return ""
}
