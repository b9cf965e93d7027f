package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	defaultTitle = "untitled"
	defaultRole  = "unknown"
)

type Archive struct {
	Conversations []Conversation
}

// Len returns the number of conversations in the archive.
func (a *Archive) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Conversations)
}

// Titles returns conversation titles in archive order.
func (a *Archive) Titles() []string {
	titles := make([]string, 0, a.Len())
	for _, c := range a.Conversations {
		titles = append(titles, c.Title)
	}
	return titles
}

type Conversation struct {
	ID         string
	Title      string
	CreateTime float64 // unix seconds, 0 if absent
	UpdateTime float64
	Mapping    Mapping
}

type Node struct {
	ID       string
	Message  *Message
	Parent   *string // nil for a root
	Children []string
}

// IsRoot reports whether the node has no parent reference.
func (n Node) IsRoot() bool {
	return n.Parent == nil
}

type Message struct {
	Role       string
	Parts      []Part
	CreateTime float64
}

// Part is one element of a message's content parts.
// Skip is set for parts that are neither text nor an object.
type Part struct {
	Text string
	Skip bool
}

// raw shapes as they appear in conversations.json

type conversationJSON struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversation_id"`
	Title          *string  `json:"title"`
	CreateTime     *float64 `json:"create_time"`
	UpdateTime     *float64 `json:"update_time"`
	Mapping        Mapping  `json:"mapping"`
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Message  json.RawMessage `json:"message"`
	Parent   *string         `json:"parent"`
	Children []string        `json:"children"`
}

type messageJSON struct {
	Author *struct {
		Role json.RawMessage `json:"role"`
	} `json:"author"`
	Content *struct {
		Parts []json.RawMessage `json:"parts"`
	} `json:"content"`
	CreateTime *float64 `json:"create_time"`
}

func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw conversationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = raw.ID
	if c.ID == "" {
		c.ID = raw.ConversationID
	}
	c.Title = defaultTitle
	if raw.Title != nil && *raw.Title != "" {
		c.Title = *raw.Title
	}
	if raw.CreateTime != nil {
		c.CreateTime = *raw.CreateTime
	}
	if raw.UpdateTime != nil {
		c.UpdateTime = *raw.UpdateTime
	}
	c.Mapping = raw.Mapping
	return nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.ID = raw.ID
	n.Parent = raw.Parent
	n.Children = raw.Children
	msg, err := decodeMessage(raw.Message)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	n.Message = msg
	return nil
}

// decodeMessage returns nil for a null message or an empty object. Any
// object with at least one field is a message, whatever fields it has.
func decodeMessage(raw json.RawMessage) (*Message, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var m messageJSON
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m.toMessage(), nil
}

func (m *messageJSON) toMessage() *Message {
	msg := &Message{Role: defaultRole}
	if m.Author != nil {
		var role string
		if err := json.Unmarshal(m.Author.Role, &role); err == nil && role != "" {
			msg.Role = role
		}
	}
	if m.Content != nil {
		msg.Parts = make([]Part, 0, len(m.Content.Parts))
		for _, p := range m.Content.Parts {
			msg.Parts = append(msg.Parts, decodePart(p))
		}
	}
	if m.CreateTime != nil {
		msg.CreateTime = *m.CreateTime
	}
	return msg
}

func decodePart(raw json.RawMessage) Part {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Part{Skip: true}
	}

	// try string first
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Part{Text: s}
	}

	// then an object with a text field
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		var text string
		if t, ok := obj["text"]; ok {
			if err := json.Unmarshal(t, &text); err != nil {
				text = ""
			}
		}
		return Part{Text: text}
	}

	return Part{Skip: true}
}

// Mapping is a node table that remembers the key order of the JSON object
// it was decoded from.
type Mapping struct {
	keys  []string
	nodes map[string]Node
}

// NewMapping builds a mapping from nodes in the given order. Node IDs are
// taken from each node's ID field.
func NewMapping(nodes ...Node) Mapping {
	var m Mapping
	for _, n := range nodes {
		m.Set(n.ID, n)
	}
	return m
}

// Set inserts or replaces a node. A replaced key keeps its original position.
func (m *Mapping) Set(id string, n Node) {
	if m.nodes == nil {
		m.nodes = make(map[string]Node)
	}
	if _, ok := m.nodes[id]; !ok {
		m.keys = append(m.keys, id)
	}
	m.nodes[id] = n
}

func (m Mapping) Get(id string) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

func (m Mapping) Len() int {
	return len(m.keys)
}

// Keys returns node IDs in document order.
func (m Mapping) Keys() []string {
	return m.keys
}

func (m *Mapping) UnmarshalJSON(data []byte) error {
	*m = Mapping{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil // "mapping": null
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("mapping: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("mapping: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("mapping[%s]: %w", id, err)
		}
		var n Node
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("mapping[%s]: %w", id, err)
			}
		}
		n.ID = id // the key is authoritative for child references
		m.Set(id, n)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
