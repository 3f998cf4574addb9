package extract

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

// DecodeBase64URLToken decodes a base64url token into a string. Tracking
// tokens routinely arrive without padding, so padding is repaired before any
// decode attempt. Returns false when the token cannot be decoded.
func DecodeBase64URLToken(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	// Repair padding to a multiple of 4
	if rem := len(token) % 4; rem != 0 {
		token += strings.Repeat("=", 4-rem)
	}

	if decoded, err := base64.URLEncoding.DecodeString(token); err == nil {
		return string(decoded), true
	}
	// Some providers emit standard-alphabet tokens in URL paths
	if decoded, err := base64.StdEncoding.DecodeString(token); err == nil {
		return string(decoded), true
	}

	return "", false
}

// jsonPayloadLinkKeys lists the fields a JSON-wrapped redirect payload may
// carry its target URL under, in preference order.
var jsonPayloadLinkKeys = []string{"href", "url", "link", "u"}

// DecodeJSONPayloadToken decodes a base64 token whose payload is a JSON
// object wrapping the target URL. Returns false when the token does not
// decode, does not parse, or carries no usable link field.
func DecodeJSONPayloadToken(token string) (string, bool) {
	decoded, ok := DecodeBase64URLToken(token)
	if !ok {
		return "", false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(decoded), &payload); err != nil {
		return "", false
	}

	for _, key := range jsonPayloadLinkKeys {
		if v, ok := payload[key].(string); ok && isAbsoluteURL(v) {
			return v, true
		}
	}

	return "", false
}

// ResolveRedirectParam extracts a redirect target from a tracking URL's query
// string, trying the candidate parameter names in order. The extracted value
// must parse as an absolute URL. Returns false when no candidate yields one.
func ResolveRedirectParam(rawURL string, candidateParams []string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	query := u.Query()
	for _, name := range candidateParams {
		value := query.Get(name)
		if value == "" {
			continue
		}
		// Values are often double-escaped by the tracking layer
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		if isAbsoluteURL(value) {
			return value, true
		}
	}

	return "", false
}

// stripTrackingQuery drops the query string and fragment from a resolved
// offer URL, so tracking parameters never leak into the stored record or its
// identity.
func stripTrackingQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// isAbsoluteURL reports whether s parses as an absolute http(s) URL
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
