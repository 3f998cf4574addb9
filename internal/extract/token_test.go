package extract

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64URLToken(t *testing.T) {
	target := "https://jobs.example/emplois/123456.html"

	tests := []struct {
		name   string
		token  string
		want   string
		wantOK bool
	}{
		{"padded", base64.URLEncoding.EncodeToString([]byte(target)), target, true},
		{"unpadded", base64.RawURLEncoding.EncodeToString([]byte(target)), target, true},
		{"standard alphabet", base64.StdEncoding.EncodeToString([]byte(target)), target, true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"not base64", "!!!not-a-token!!!", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeBase64URLToken(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeJSONPayloadToken(t *testing.T) {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}

	tests := []struct {
		name   string
		token  string
		want   string
		wantOK bool
	}{
		{"href field", encode(`{"href":"https://example.com/jobs/1"}`), "https://example.com/jobs/1", true},
		{"url field", encode(`{"url":"https://example.com/jobs/2"}`), "https://example.com/jobs/2", true},
		{"href preferred over url", encode(`{"url":"https://example.com/b","href":"https://example.com/a"}`), "https://example.com/a", true},
		{"relative href rejected", encode(`{"href":"/jobs/1"}`), "", false},
		{"not json", encode(`just a string`), "", false},
		{"no link field", encode(`{"id":42}`), "", false},
		{"not base64", "%%%", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeJSONPayloadToken(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRedirectParam(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		params []string
		want   string
		wantOK bool
	}{
		{
			"plain param",
			"https://track.example/r?url=https://jobs.example/offre/1",
			[]string{"url"},
			"https://jobs.example/offre/1",
			true,
		},
		{
			"escaped param",
			"https://track.example/r?redirect=https%3A%2F%2Fjobs.example%2Foffre%2F2",
			[]string{"url", "redirect"},
			"https://jobs.example/offre/2",
			true,
		},
		{
			"first matching candidate wins",
			"https://track.example/r?u=https://jobs.example/a&url=https://jobs.example/b",
			[]string{"url", "u"},
			"https://jobs.example/b",
			true,
		},
		{
			"non-url value rejected",
			"https://track.example/r?url=not-a-url",
			[]string{"url"},
			"",
			false,
		},
		{
			"missing param",
			"https://track.example/r?other=x",
			[]string{"url"},
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveRedirectParam(tt.rawURL, tt.params)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripTrackingQuery(t *testing.T) {
	assert.Equal(t,
		"https://jobs.example/emplois/123456.html",
		stripTrackingQuery("https://jobs.example/emplois/123456.html?utm_source=mail&ref=alert#top"))
}
