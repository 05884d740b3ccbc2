package imap

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// Message is the part of an inbound email the ingestion needs.
type Message struct {
	UID      uint32
	From     string
	FromName string
	Subject  string
	Body     string
	Date     time.Time
}

var (
	angleAddress = regexp.MustCompile(`<([^<>@\s]+@[^<>\s]+)>`)
	bareAddress  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// ParseMessage reads an RFC 5322 message. The body is the first text/plain
// part, or the text of the first text/html part when no plain part exists.
// Attachments are ignored.
func ParseMessage(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	msg.From, msg.FromName = parseSender(mr.Header)
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = strings.TrimSpace(subject)
	} else {
		msg.Subject = strings.TrimSpace(mr.Header.Get("Subject"))
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}

	var plain, htmlBody string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return nil, fmt.Errorf("read part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		switch contentType {
		case "text/plain":
			if plain == "" {
				b, err := io.ReadAll(part.Body)
				if err != nil {
					return nil, fmt.Errorf("read text part: %w", err)
				}
				plain = string(b)
			}
		case "text/html":
			if htmlBody == "" {
				b, err := io.ReadAll(part.Body)
				if err != nil {
					return nil, fmt.Errorf("read html part: %w", err)
				}
				htmlBody = string(b)
			}
		}
	}

	msg.Body = strings.TrimSpace(plain)
	if msg.Body == "" && htmlBody != "" {
		msg.Body = htmlToText(htmlBody)
	}
	return msg, nil
}

func parseSender(h mail.Header) (address, name string) {
	if list, err := h.AddressList("From"); err == nil && len(list) > 0 {
		return strings.ToLower(list[0].Address), list[0].Name
	}

	raw := h.Get("From")
	if m := angleAddress.FindStringSubmatch(raw); m != nil {
		return strings.ToLower(m[1]), strings.Trim(strings.TrimSpace(raw[:strings.Index(raw, "<")]), `"`)
	}
	if m := bareAddress.FindString(raw); m != "" {
		return strings.ToLower(m), ""
	}
	return "", ""
}

// htmlToText keeps the text nodes of an HTML document, skipping scripts
// and styles, with block elements separated by newlines.
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "tr", "li", "h1", "h2", "h3", "h4", "table":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "tr", "li", "td":
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
