package mail

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := string(buildMessage("no-reply@example.com", "Expense Tracker", "a@example.com", "Verify", "<p>hi</p>\n<p>there</p>", now))

	assert.Contains(t, msg, "From: \"Expense Tracker\" <no-reply@example.com>\r\n")
	assert.Contains(t, msg, "To: a@example.com\r\n")
	assert.Contains(t, msg, "Subject: Verify\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>\r\n<p>there</p>"))
}

func TestValidateRecipient(t *testing.T) {
	assert.NoError(t, validateRecipient("a@example.com"))
	assert.Error(t, validateRecipient("a@example.com\r\nBcc: x@example.com"))
	assert.Error(t, validateRecipient("not an address"))
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSender_Send(t *testing.T) {
	w := &fakeWriter{}
	s := newKafkaSender(w, "no-reply@example.com", "Expense Tracker")

	require.NoError(t, s.Send(context.Background(), "a@example.com", "Subject", "<b>body</b>"))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "a@example.com", string(w.msgs[0].Key))

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "a@example.com", ev.To)
	assert.Equal(t, "Subject", ev.Subject)
	assert.Equal(t, "<b>body</b>", ev.HTML)
	assert.Equal(t, "no-reply@example.com", ev.From)

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestKafkaSender_SendError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	s := newKafkaSender(w, "no-reply@example.com", "")

	err := s.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorContains(t, err, "broker down")
	assert.Error(t, s.Send(context.Background(), "bad", "s", "b"))
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.Send(context.Background(), "a@example.com", "Hello", "<p>x</p>"))
	assert.Contains(t, buf.String(), "a@example.com")
	assert.Contains(t, buf.String(), "Hello")
}

// serveSMTP accepts one connection and speaks just enough SMTP for net/smtp without
// STARTTLS or AUTH. It returns the DATA payload on the channel.
func serveSMTP(t *testing.T, ln net.Listener) <-chan string {
	t.Helper()
	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		write("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				write("250-localhost")
				write("250 8BITMIME")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				write("250 OK")
			case cmd == "DATA":
				write("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				out <- body.String()
				write("250 queued")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	}()
	return out
}

func TestSMTPSender_Send(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	received := serveSMTP(t, ln)

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	s := NewSMTPSender(SMTPConfig{Host: host, Port: port, From: "no-reply@example.com", FromName: "Expense Tracker"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Send(ctx, "a@example.com", "Verify", "<p>123456</p>"))

	select {
	case body := <-received:
		assert.Contains(t, body, "To: a@example.com")
		assert.Contains(t, body, "<p>123456</p>")
	case <-time.After(5 * time.Second):
		t.Fatal("smtp server did not receive a message")
	}
}

func TestSMTPSender_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()

	s := NewSMTPSender(SMTPConfig{Host: host, Port: port, From: "no-reply@example.com"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Send(ctx, "a@example.com", "s", "b"))
}
