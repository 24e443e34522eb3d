package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"randpost/internal/message"
)

// maxTextRunes is Telegram's limit for a single text message.
const maxTextRunes = 4096

// h is HTML that is safe to pass to Telegram when ParseMode="HTML".
type h string

func esc(s string) h { return h(html.EscapeString(s)) }

func wrap(tag string, inner h) h { return h("<" + tag + ">" + string(inner) + "</" + tag + ">") }

func bold(s string) h   { return wrap("b", esc(s)) }
func italic(s string) h { return wrap("i", esc(s)) }

func link(text, url string) h {
	return h(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), html.EscapeString(text)))
}

func join(sep string, parts ...h) h {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(string(p)) == "" {
			continue
		}
		ss = append(ss, string(p))
	}
	return h(strings.Join(ss, sep))
}

// Render turns a message into Telegram HTML. Embeds become blocks of
// title, description, fields and footer; images are linked, not attached.
func Render(m message.Message) string {
	blocks := []h{esc(m.Content())}
	for _, e := range m.Embeds() {
		blocks = append(blocks, renderEmbed(e))
	}
	return truncHTML(string(join("\n\n", blocks...)), maxTextRunes)
}

func renderEmbed(e message.Embed) h {
	var lines []h
	if e.Author != nil && e.Author.Name != "" {
		if e.Author.URL != "" {
			lines = append(lines, wrap("i", link(e.Author.Name, e.Author.URL)))
		} else {
			lines = append(lines, italic(e.Author.Name))
		}
	}
	switch {
	case e.Title != "" && e.URL != "":
		lines = append(lines, wrap("b", link(e.Title, e.URL)))
	case e.Title != "":
		lines = append(lines, bold(e.Title))
	case e.URL != "":
		lines = append(lines, link(e.URL, e.URL))
	}
	if e.Description != "" {
		lines = append(lines, esc(e.Description))
	}
	for _, f := range e.Fields {
		lines = append(lines, bold(f.Name)+h("\n")+esc(f.Value))
	}
	if e.Image != nil && e.Image.URL != "" {
		lines = append(lines, link("image", e.Image.URL))
	}
	if e.Footer != nil && e.Footer.Text != "" {
		lines = append(lines, italic(e.Footer.Text))
	}
	return join("\n", lines...)
}

// truncHTML cuts s to at most n visible runes, ending in "…" when cut.
// Tags and entities are never split and every tag still open at the cut is
// closed, so Telegram can always parse the result.
func truncHTML(s string, n int) string {
	if visibleRunes(s) <= n {
		return s
	}
	var (
		b     strings.Builder
		open  []string
		count int
	)
	for i := 0; i < len(s); {
		tok, visible := nextToken(s[i:])
		if visible {
			if count == n-1 {
				break
			}
			count++
		} else if name, closing := tagName(tok); name != "" {
			if !closing {
				open = append(open, name)
			} else if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
		b.WriteString(tok)
		i += len(tok)
	}
	b.WriteString("…")
	for j := len(open) - 1; j >= 0; j-- {
		b.WriteString("</" + open[j] + ">")
	}
	return b.String()
}

// visibleRunes counts runes as Telegram does after parsing: tags count for
// nothing, an entity counts as one.
func visibleRunes(s string) int {
	count := 0
	for i := 0; i < len(s); {
		tok, visible := nextToken(s[i:])
		if visible {
			count++
		}
		i += len(tok)
	}
	return count
}

// nextToken returns the tag, entity or single rune at the start of s.
func nextToken(s string) (string, bool) {
	switch s[0] {
	case '<':
		if j := strings.IndexByte(s, '>'); j >= 0 {
			return s[:j+1], false
		}
	case '&':
		if j := strings.IndexByte(s, ';'); j > 0 && j <= 10 {
			return s[:j+1], true
		}
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size], true
}

func tagName(tok string) (name string, closing bool) {
	if !strings.HasPrefix(tok, "<") {
		return "", false
	}
	inner := strings.Trim(tok, "<>")
	closing = strings.HasPrefix(inner, "/")
	inner = strings.TrimPrefix(inner, "/")
	if j := strings.IndexByte(inner, ' '); j >= 0 {
		inner = inner[:j]
	}
	return inner, closing
}
