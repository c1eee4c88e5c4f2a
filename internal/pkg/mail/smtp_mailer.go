package mail

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"petalert/internal/pkg/env"
)

const sendTimeout = 10 * time.Second

// ErrIncompleteConfig means one of the SMTP settings is missing; the send is
// skipped, never retried.
var ErrIncompleteConfig = errors.New("incomplete SMTP configuration")

// Attachment is one binary MIME part of an outgoing report notification.
type Attachment struct {
	FileName string
	MimeType string
	Data     []byte
}

// SendReportMail sends one plain-text message with the given attachments to
// the configured primary destination(s) plus extraRecipients. Transport
// settings come from the environment (SMTP_HOST, SMTP_PORT, SMTP_USERNAME,
// SMTP_PASSWORD, SMTP_TO_EMAIL); if any is missing the mail is skipped with
// an error log.
func SendReportMail(subject, body string, extraRecipients []string, attachments []Attachment) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	primary := env.GetEnv("SMTP_TO_EMAIL", "")

	if host == "" || port == "" || username == "" || password == "" || primary == "" {
		log.Errorf("[Mail] Not sent (%s): SMTP settings incomplete (HOST/PORT/USERNAME/PASSWORD/TO_EMAIL)", subject)
		return ErrIncompleteConfig
	}

	recipients := Recipients(primary, extraRecipients)
	if len(recipients) == 0 {
		log.Errorf("[Mail] Not sent (%s): no valid recipients", subject)
		return ErrIncompleteConfig
	}

	msg, err := buildMessage(username, recipients, subject, body, attachments)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	if err := sendViaSMTP(addr, host, username, password, recipients, msg); err != nil {
		log.Errorf("[Mail] SMTP send error (%s): %v", subject, err)
		return err
	}

	log.Infof("[Mail] Sent %q to %s via %s", subject, strings.Join(recipients, ", "), addr)
	return nil
}

// Recipients merges the comma-separated primary destination with the extra
// addresses, trimming blanks and dropping exact duplicates in order.
func Recipients(primary string, extra []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	for _, addr := range strings.Split(primary, ",") {
		add(addr)
	}
	for _, addr := range extra {
		add(addr)
	}
	return out
}

func buildMessage(from string, to []string, subject, body string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	textPart, err := w.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		if len(att.Data) == 0 {
			continue
		}
		mimeType := att.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", mimeType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, att.Data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 emits the payload base64-encoded in 76-column lines.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// sendViaSMTP performs the STARTTLS + AUTH + DATA dance with a hard deadline
// on the whole exchange.
func sendViaSMTP(addr, host, username, password string, recipients []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, sendTimeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(sendTimeout))

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}

	if err := client.Auth(smtp.PlainAuth("", username, password, host)); err != nil {
		return err
	}

	if err := client.Mail(username); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
