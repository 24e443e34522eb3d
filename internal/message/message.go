// Package message models the configured message pool.
//
// A message is either a plain string or a rich body with embeds:
//
//	messages:
//	  abc: "plain text"
//	  def:
//	    content: "optional text"
//	    embeds:
//	      - title: "title"
//	        url: "https://example.com"
//	        thumbnail: { url: "https://example.com/t.png" }
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var ErrEmpty = errors.New("message has neither content nor embeds")

// Message is a union: exactly one of Text or Rich is meaningful.
// A nil Rich means the plain text variant.
type Message struct {
	Text string
	Rich *Rich
}

// Rich is the structured variant. Content is optional.
type Rich struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed holds the fields used for validation and non-webhook rendering.
// Raw keeps the configured object as written so webhook payloads carry
// keys this type does not model (video, provider, ...).
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Thumbnail   *Image       `json:"thumbnail,omitempty"`
	Image       *Image       `json:"image,omitempty"`
	Author      *Author      `json:"author,omitempty"`
	Footer      *Footer      `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type embedFields Embed

func (e *Embed) UnmarshalJSON(b []byte) error {
	var f embedFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	raw, err := canonical(b)
	if err != nil {
		return err
	}
	f.Raw = raw
	*e = Embed(f)
	return nil
}

// canonical re-encodes an object compactly with sorted keys, so the same
// embed written as YAML or JSON yields the same bytes.
func canonical(b []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalJSON writes Raw when the embed was decoded, the typed fields otherwise.
func (e Embed) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(embedFields(e))
}

type Image struct {
	URL string `json:"url"`
}

type Author struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Plain builds a text message.
func Plain(s string) Message { return Message{Text: s} }

// IsRich reports whether m is the structured variant.
func (m Message) IsRich() bool { return m.Rich != nil }

// Content returns the top-level text of either variant.
func (m Message) Content() string {
	if m.Rich != nil {
		return m.Rich.Content
	}
	return m.Text
}

// Embeds returns the embeds of a rich message (nil for plain text).
func (m Message) Embeds() []Embed {
	if m.Rich == nil {
		return nil
	}
	return m.Rich.Embeds
}

func (m Message) Validate() error {
	if m.Rich == nil {
		if strings.TrimSpace(m.Text) == "" {
			return ErrEmpty
		}
		return nil
	}
	if strings.TrimSpace(m.Rich.Content) == "" && len(m.Rich.Embeds) == 0 {
		return ErrEmpty
	}
	for i, e := range m.Rich.Embeds {
		for j, f := range e.Fields {
			if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Value) == "" {
				return fmt.Errorf("embeds[%d].fields[%d]: name and value are required", i, j)
			}
		}
	}
	return nil
}

// UnmarshalJSON accepts a JSON string or an object with only content and
// embeds. Embed objects themselves are open.
func (m *Message) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Message{Text: s}
		return nil
	}
	if len(b) == 0 || b[0] != '{' {
		return fmt.Errorf("message must be a string or an object, got %s", truncate(string(b), 40))
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var r Rich
	if err := dec.Decode(&r); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("message: trailing data")
	}
	*m = Message{Rich: &r}
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	if m.Rich != nil {
		return json.Marshal(m.Rich)
	}
	return json.Marshal(m.Text)
}

// Pool is the immutable set of configured messages.
type Pool map[string]Message

// IDs returns the pool ids in ascending order.
func (p Pool) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
