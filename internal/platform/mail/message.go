// Package mail implements the outbound email transports: direct SMTP, a Kafka
// topic consumed by a mail worker, and a log-only sender for local development.
package mail

import (
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"
)

// buildMessage renders an RFC 5322 HTML message.
func buildMessage(from, fromName, to, subject, html string, now time.Time) []byte {
	sender := (&mail.Address{Name: fromName, Address: from}).String()
	headers := []string{
		"From: " + sender,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + normalizeNewlines(html))
}

// normalizeNewlines converts bare LF to CRLF as SMTP requires.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func validateRecipient(to string) error {
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient %q", to)
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	return nil
}
