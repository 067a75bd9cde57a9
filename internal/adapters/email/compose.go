package email

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
)

const layout = `<!doctype html>
<html><body style="font-family:sans-serif;max-width:560px;margin:auto">
<h2>%s</h2>
%s
<p style="color:#888;font-size:12px">CUTRACKIT court check-in</p>
</body></html>`

// Compose renders a markdown body into an HTML SendRequest. Raw HTML in the
// markdown is dropped by goldmark's default renderer.
func Compose(to []string, subject, markdown string) (SendRequest, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return SendRequest{}, fmt.Errorf("render email markdown: %w", err)
	}
	return SendRequest{
		To:      to,
		Subject: subject,
		HTML:    fmt.Sprintf(layout, html.EscapeString(subject), body.String()),
	}, nil
}
