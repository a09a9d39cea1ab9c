package content

import (
	"bytes"
	"errors"
	"html"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

const (
	MaxUsernameLength = 32
	MaxAvatarLength   = 64
	MaxMessageLength  = 4000
)

var (
	ErrUsernameEmpty   = errors.New("username cannot be empty")
	ErrMessageEmpty    = errors.New("message cannot be empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
	ErrMessageEncoding = errors.New("message is not valid UTF-8")
)

var (
	strict   = bluemonday.StrictPolicy()
	policy   = bluemonday.UGCPolicy()
	markdown = goldmark.New()
)

// Username turns a client supplied display name into plain text: markup and
// control characters are stripped, surrounding space trimmed and the result
// truncated to MaxUsernameLength runes.
func Username(input string) (string, error) {
	name := truncate(plain(input), MaxUsernameLength)
	if name == "" {
		return "", ErrUsernameEmpty
	}
	return name, nil
}

// Avatar normalises the opaque avatar token. An empty token is allowed.
func Avatar(input string) string {
	return truncate(plain(input), MaxAvatarLength)
}

// MessageText validates the body of a chat message.
func MessageText(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrMessageEncoding
	}
	text := strings.TrimSpace(input)
	if text == "" {
		return "", ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// Render converts markdown text into sanitized HTML. Raw HTML in the source is
// never passed through.
func Render(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return Escape(text)
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}

// Escape escapes special characters like "<" to become "&lt;".
func Escape(input string) string {
	return template.HTMLEscapeString(input)
}

func plain(input string) string {
	s := html.UnescapeString(strict.Sanitize(input))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}
