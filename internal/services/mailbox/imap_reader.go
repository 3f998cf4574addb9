// -----------------------------------------------------------------------
// IMAP mailbox reader
// Credentials come from KeyValue storage with imap_ prefix, falling back
// to the static configuration file
// -----------------------------------------------------------------------

package mailbox

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/interfaces"
)

// ImapReader fetches job-board notification emails over IMAP
type ImapReader struct {
	config    common.ImapConfig
	kvStorage interfaces.KeyValueStorage
	logger    arbor.ILogger
}

// NewImapReader creates an IMAP-backed mailbox reader
func NewImapReader(config common.ImapConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *ImapReader {
	return &ImapReader{
		config:    config,
		kvStorage: kvStorage,
		logger:    logger,
	}
}

// effectiveConfig overlays KeyValue storage entries on the file config,
// so credentials can be rotated without a restart
func (r *ImapReader) effectiveConfig(ctx context.Context) common.ImapConfig {
	config := r.config

	if host, err := r.kvStorage.Get(ctx, "imap_host"); err == nil && host != "" {
		config.Host = host
	}
	if portStr, err := r.kvStorage.Get(ctx, "imap_port"); err == nil && portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if username, err := r.kvStorage.Get(ctx, "imap_username"); err == nil && username != "" {
		config.Username = username
	}
	if password, err := r.kvStorage.Get(ctx, "imap_password"); err == nil && password != "" {
		config.Password = password
	}

	return config
}

// connect dials, logs in and selects INBOX
func (r *ImapReader) connect(config common.ImapConfig) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var c *client.Client
	var err error
	if config.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(config.Username, config.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	return c, nil
}

// FetchUnread returns the unseen messages in INBOX with their HTML bodies
func (r *ImapReader) FetchUnread(ctx context.Context) ([]interfaces.Email, error) {
	config := r.effectiveConfig(ctx)
	if config.Host == "" || config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("IMAP not configured")
	}

	c, err := r.connect(config)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(seqNums) == 0 {
		r.logger.Debug().Msg("No unseen messages")
		return []interfaces.Email{}, nil
	}

	r.logger.Debug().Int("count", len(seqNums)).Msg("Found unseen messages")

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	section := &imap.BodySectionName{}

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}, messages)
	}()

	var emails []interfaces.Email
	for msg := range messages {
		if msg == nil {
			continue
		}

		html, err := parseHTMLBody(msg, section)
		if err != nil {
			r.logger.Warn().Err(err).Int64("seq", int64(msg.SeqNum)).Msg("Failed to parse message body")
			continue
		}

		from := ""
		if len(msg.Envelope.From) > 0 {
			from = msg.Envelope.From[0].Address()
		}

		emails = append(emails, interfaces.Email{
			ID:         strconv.FormatUint(uint64(msg.SeqNum), 10),
			From:       from,
			Subject:    msg.Envelope.Subject,
			HTML:       html,
			ReceivedAt: msg.Envelope.Date,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return emails, nil
}

// MarkRead flags a message as seen so it is not fetched again
func (r *ImapReader) MarkRead(ctx context.Context, id string) error {
	seqNum, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", id, err)
	}

	config := r.effectiveConfig(ctx)
	if config.Host == "" || config.Username == "" || config.Password == "" {
		return fmt.Errorf("IMAP not configured")
	}

	c, err := r.connect(config)
	if err != nil {
		return err
	}
	defer c.Logout()

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(seqNum))

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	if err := c.Store(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("failed to mark message as read: %w", err)
	}

	r.logger.Debug().Str("message_id", id).Msg("Marked message as read")
	return nil
}

// parseHTMLBody extracts the text/html part of a message, falling back to
// text/plain when the notification carries no HTML alternative
func parseHTMLBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("nil message")
	}

	reader := msg.GetBody(section)
	if reader == nil {
		return "", fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	var html, plain string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read next part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			switch {
			case strings.HasPrefix(contentType, "text/html"):
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read body: %w", err)
				}
				html = string(b)
			case strings.HasPrefix(contentType, "text/plain") && plain == "":
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read body: %w", err)
				}
				plain = string(b)
			}
		}
	}

	if html != "" {
		return html, nil
	}
	return strings.TrimSpace(plain), nil
}
