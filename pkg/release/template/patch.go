// Package template rewrites the APK download link of a static HTML page and
// commits the change.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrTemplateNotFound is returned when the template file does not exist
	ErrTemplateNotFound = errors.New("template file not found")

	// ErrLinkNotFound is returned when no marked anchor matches
	ErrLinkNotFound = errors.New("download link not found in template")

	// ErrAmbiguousLink is returned when more than one marked anchor matches
	ErrAmbiguousLink = errors.New("more than one download link matches in template")
)

type anchor struct {
	text       strings.Builder
	href       string
	start, end int // value bytes within the document
	quoted     bool
}

// Patch returns doc with the href of the download anchor set to url.
//
// The anchor must directly follow a comment whose text is marker, with only
// whitespace between them. Anchors whose visible text is linkText are
// preferred; when there are none, a marked anchor with href="#" is used.
// Exactly one anchor must match. Only the href value bytes change.
func Patch(doc []byte, marker, linkText, url string) ([]byte, error) {
	anchors, err := markedAnchors(doc, marker)
	if err != nil {
		return nil, err
	}

	var matches []*anchor
	for _, a := range anchors {
		if collapse(a.text.String()) == collapse(linkText) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		for _, a := range anchors {
			if a.href == "#" {
				matches = append(matches, a)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: marker %q", ErrLinkNotFound, marker)
	case 1:
	default:
		return nil, fmt.Errorf("%w: marker %q matched %d anchors", ErrAmbiguousLink, marker, len(matches))
	}

	m := matches[0]
	value := html.EscapeString(url)
	if !m.quoted {
		value = `"` + value + `"`
	}

	out := make([]byte, 0, len(doc)+len(value))
	out = append(out, doc[:m.start]...)
	out = append(out, value...)
	out = append(out, doc[m.end:]...)
	return out, nil
}

// markedAnchors tokenizes doc and returns every <a href> that follows a
// marker comment
func markedAnchors(doc []byte, marker string) ([]*anchor, error) {
	z := html.NewTokenizer(bytes.NewReader(doc))

	var (
		anchors     []*anchor
		current     *anchor
		afterMarker bool
		offset      int
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return anchors, nil
			}
			return nil, fmt.Errorf("tokenize template: %w", z.Err())
		}

		// Raw must be copied before Text or TagName, which may rewrite the
		// underlying buffer in place.
		raw := append([]byte(nil), z.Raw()...)
		start := offset
		offset += len(raw)

		switch tt {
		case html.CommentToken:
			if current == nil {
				afterMarker = strings.TrimSpace(string(z.Text())) == marker
			}

		case html.TextToken:
			text := string(z.Text())
			if current != nil {
				current.text.WriteString(text)
			} else if strings.TrimSpace(text) != "" {
				afterMarker = false
			}

		case html.StartTagToken:
			name, _ := z.TagName()
			if current != nil {
				continue
			}
			if afterMarker && string(name) == "a" {
				current = newAnchor(raw, start)
			}
			afterMarker = false

		case html.EndTagToken:
			name, _ := z.TagName()
			if current != nil && string(name) == "a" {
				if current.start >= 0 {
					anchors = append(anchors, current)
				}
				current = nil
			}
			afterMarker = false

		default:
			afterMarker = false
		}
	}
}

// newAnchor locates the href value within the raw start tag. An anchor
// without href gets start -1 and is never a candidate.
func newAnchor(raw []byte, tagStart int) *anchor {
	a := &anchor{start: -1}

	s, e, quoted, ok := hrefSpan(raw)
	if !ok {
		return a
	}
	a.start, a.end, a.quoted = tagStart+s, tagStart+e, quoted
	a.href = html.UnescapeString(string(raw[s:e]))
	return a
}

// hrefSpan walks the attributes of a raw start tag in order and returns the
// value bytes of the first href. Quoted values are skipped whole, so text
// such as href= inside another attribute's value never matches.
func hrefSpan(raw []byte) (start, end int, quoted, ok bool) {
	isSpace := func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
	}

	i := 1 // past '<'
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}

	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			return 0, 0, false, false
		}

		nameStart := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' && (raw[i] != '=' || i == nameStart) {
			i++
		}
		name := raw[nameStart:i]

		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			return 0, 0, false, false
		}

		var valueStart, valueEnd int
		isQuoted := raw[i] == '"' || raw[i] == '\''
		if isQuoted {
			q := raw[i]
			i++
			valueStart = i
			for i < len(raw) && raw[i] != q {
				i++
			}
			valueEnd = i
			i++
		} else {
			valueStart = i
			for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' {
				i++
			}
			valueEnd = i
		}

		if bytes.EqualFold(name, []byte("href")) {
			return valueStart, valueEnd, isQuoted, true
		}
	}
	return 0, 0, false, false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PatchFile patches the template at path in place. It reports whether the
// file content changed; an unchanged file is not rewritten.
func PatchFile(path, marker, linkText, url string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return false, fmt.Errorf("stat template: %w", err)
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read template: %w", err)
	}

	patched, err := Patch(doc, marker, linkText, url)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	if bytes.Equal(doc, patched) {
		return false, nil
	}

	if err := os.WriteFile(path, patched, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write template: %w", err)
	}
	return true, nil
}
