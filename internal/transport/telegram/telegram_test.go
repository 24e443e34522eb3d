package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"randpost/internal/message"
	"randpost/internal/transport"
	logx "randpost/pkg/logx"
)

func TestRender(t *testing.T) {
	m := message.Message{Rich: &message.Rich{
		Content: "a <b> & c",
		Embeds: []message.Embed{{
			Title:       "title1",
			URL:         "https://example.com/1?a=1&b=2",
			Description: "desc",
			Fields:      []message.EmbedField{{Name: "k", Value: "v"}},
			Footer:      &message.Footer{Text: "foot"},
		}},
	}}
	got := Render(m)
	for _, want := range []string{
		"a &lt;b&gt; &amp; c",
		`<b><a href="https://example.com/1?a=1&amp;b=2">title1</a></b>`,
		"desc",
		"<b>k</b>\nv",
		"<i>foot</i>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("Render = %q, missing %q", got, want)
		}
	}
	if Render(message.Plain("hi")) != "hi" {
		t.Fatalf("plain render = %q", Render(message.Plain("hi")))
	}
}

func TestTruncHTML(t *testing.T) {
	long := strings.Repeat("ü", maxTextRunes+10)
	got := truncHTML(long, maxTextRunes)
	if n := utf8.RuneCountInString(got); n != maxTextRunes {
		t.Fatalf("rune count = %d, want %d", n, maxTextRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("missing ellipsis")
	}
	if truncHTML("short", 10) != "short" {
		t.Fatal("short strings must be unchanged")
	}
	if got := truncHTML("&amp;&amp;&amp;", 2); got != "&amp;…" {
		t.Fatalf("entity cut = %q", got)
	}
}

func TestRenderLongMessageKeepsTagsBalanced(t *testing.T) {
	t.Parallel()

	for _, pad := range []int{4080, 4088, 4090, 4094, 4100} {
		m := message.Message{Rich: &message.Rich{
			Content: strings.Repeat("a", pad),
			Embeds: []message.Embed{{
				Title:       "a title & more",
				URL:         "https://example.com/x?a=1&b=2",
				Description: "desc",
				Footer:      &message.Footer{Text: "foot"},
			}},
		}}
		got := Render(m)
		if n := visibleRunes(got); n > maxTextRunes {
			t.Fatalf("pad=%d: visible runes = %d, want <= %d", pad, n, maxTextRunes)
		}
		if err := checkBalanced(got); err != nil {
			t.Fatalf("pad=%d: %v\ntail: %q", pad, err, got[max(0, len(got)-120):])
		}
	}
}

func checkBalanced(s string) error {
	var open []string
	for i := 0; i < len(s); {
		tok, _ := nextToken(s[i:])
		i += len(tok)
		if strings.HasPrefix(tok, "<") && !strings.HasSuffix(tok, ">") {
			return fmt.Errorf("unterminated tag %q", tok)
		}
		name, closing := tagName(tok)
		switch {
		case name == "":
		case !closing:
			open = append(open, name)
		case len(open) == 0 || open[len(open)-1] != name:
			return fmt.Errorf("unexpected </%s>, open %v", name, open)
		default:
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("unclosed tags %v", open)
	}
	return nil
}

func TestSend(t *testing.T) {
	var gotPath, gotText, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotText = r.FormValue("text")
		gotMode = r.FormValue("parse_mode")
		if gotText == "" {
			// telebot sends a JSON body.
			var body struct {
				Text      string `json:"text"`
				ParseMode string `json:"parse_mode"`
			}
			_ = jsonDecode(r, &body)
			gotText, gotMode = body.Text, body.ParseMode
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"group"}}}`))
	}))
	defer srv.Close()

	s, err := New(Config{Token: "123:abc", ChatID: 42, APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Send(context.Background(), transport.Post{ID: "x", Message: message.Plain("hello")}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotText != "hello" || gotMode != "HTML" {
		t.Fatalf("text=%q parse_mode=%q", gotText, gotMode)
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	s, err := New(Config{Token: "123:abc", ChatID: 42, APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = s.Send(context.Background(), transport.Post{Message: message.Plain("hello")})
	if !errors.Is(err, transport.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}

func TestNewRequiresTokenAndChat(t *testing.T) {
	if _, err := New(Config{ChatID: 1}, logx.Nop()); err == nil {
		t.Fatal("expected error without token")
	}
	if _, err := New(Config{Token: "t"}, logx.Nop()); err == nil {
		t.Fatal("expected error without chat id")
	}
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
