package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// FixtureReader serves saved notification emails from a directory instead of
// a live mailbox. Files are named "<sender-address>__<name>.html"; MarkRead
// renames a file with a ".read" suffix so it is fetched only once.
type FixtureReader struct {
	dir    string
	logger arbor.ILogger
}

// NewFixtureReader creates a directory-backed mailbox reader
func NewFixtureReader(dir string, logger arbor.ILogger) *FixtureReader {
	return &FixtureReader{dir: dir, logger: logger}
}

// FetchUnread lists the .html fixtures not yet marked read
func (r *FixtureReader) FetchUnread(ctx context.Context) ([]interfaces.Email, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory %s: %w", r.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var emails []interfaces.Email
	for _, name := range names {
		path := filepath.Join(r.dir, name)

		info, err := os.Stat(path)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", name).Msg("Failed to stat fixture")
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", name).Msg("Failed to read fixture")
			continue
		}

		sender := name
		if idx := strings.Index(name, "__"); idx > 0 {
			sender = name[:idx]
		} else {
			sender = strings.TrimSuffix(name, ".html")
		}

		emails = append(emails, interfaces.Email{
			ID:         name,
			From:       sender,
			Subject:    strings.TrimSuffix(name, ".html"),
			HTML:       string(data),
			ReceivedAt: info.ModTime(),
		})
	}

	r.logger.Debug().Int("count", len(emails)).Str("dir", r.dir).Msg("Loaded mailbox fixtures")
	return emails, nil
}

// MarkRead renames the fixture so the next fetch skips it
func (r *FixtureReader) MarkRead(ctx context.Context, id string) error {
	if strings.Contains(id, string(os.PathSeparator)) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid fixture id %q", id)
	}

	src := filepath.Join(r.dir, id)
	if err := os.Rename(src, src+".read"); err != nil {
		return fmt.Errorf("failed to mark fixture %s as read: %w", id, err)
	}
	return nil
}
