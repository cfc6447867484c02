package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snippet is a named, user-authored signing algorithm. Name acts as the
// primary key and is carried outside the serialized value object; the
// persisted file stores it as the enclosing map key.
type Snippet struct {
	Name        string `json:"-"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SnippetCollection is an ordered name -> Snippet mapping. Order is the
// insertion/file order and survives JSON round-trips, which matters for
// display and for reproducing the persisted document faithfully.
type SnippetCollection struct {
	names []string
	items map[string]Snippet
}

func NewSnippetCollection() *SnippetCollection {
	return &SnippetCollection{items: make(map[string]Snippet)}
}

// Get returns the snippet for name. Absence is a normal case, not an error.
func (c *SnippetCollection) Get(name string) (Snippet, bool) {
	s, ok := c.items[name]
	return s, ok
}

// Set creates or replaces the entry for s.Name. Replacing an existing name
// keeps its original position, mirroring map-update semantics in the
// persisted document.
func (c *SnippetCollection) Set(s Snippet) {
	if _, ok := c.items[s.Name]; !ok {
		c.names = append(c.names, s.Name)
	}
	c.items[s.Name] = s
}

// Remove deletes the entry for name and reports whether it was present.
func (c *SnippetCollection) Remove(name string) bool {
	if _, ok := c.items[name]; !ok {
		return false
	}
	delete(c.items, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns all snippet names in insertion order.
func (c *SnippetCollection) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Snippets returns all snippets in insertion order.
func (c *SnippetCollection) Snippets() []Snippet {
	out := make([]Snippet, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.items[n])
	}
	return out
}

func (c *SnippetCollection) Len() int {
	return len(c.names)
}

// MarshalJSON writes the collection as a JSON object keyed by snippet name,
// in insertion order.
func (c *SnippetCollection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(c.items[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by snippet name, preserving the
// document's key order. Entries without a description are tolerated.
func (c *SnippetCollection) UnmarshalJSON(data []byte) error {
	c.names = nil
	c.items = make(map[string]Snippet)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("domain: snippet collection must be a JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("domain: unexpected token %v in snippet collection", tok)
		}
		var s Snippet
		if err := dec.Decode(&s); err != nil {
			return err
		}
		s.Name = name
		c.Set(s)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// InvocationRequest carries one signing invocation's inputs. It has no
// persistent identity; callers build one per generate action and discard it.
// A nil or empty KeyOrder means the signing implementation derives its
// default field order.
type InvocationRequest struct {
	Payload  *Payload
	Passcode string
	APIKey   string
	KeyOrder []string
}

// RecordMeta captures identifiers and audit fields for SQL-backed rows.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}
