// Package unity holds Unity-specific knowledge shared by the providers: the
// message catalog, Unity base types, coroutine rules and docs URLs.
package unity

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"
)

// Message is a method Unity invokes by name.
type Message struct {
	Name        string            `json:"name"`
	Parameters  string            `json:"parameters"`
	Coroutine   bool              `json:"coroutine"` // may return IEnumerator
	Description map[string]string `json:"description"`
	Owner       string            `json:"-"`
}

// Signature renders the message as Unity documents it.
func (m *Message) Signature() string {
	return "void " + m.Name + m.Parameters
}

// Describe returns the description in locale, falling back to English.
func (m *Message) Describe(locale string) string {
	if d, ok := m.Description[locale]; ok && d != "" {
		return d
	}
	return m.Description["en"]
}

type catalogFile struct {
	Version  string    `json:"version"`
	Owner    string    `json:"owner"`
	Messages []Message `json:"messages"`
}

// Catalog indexes messages by name.
type Catalog struct {
	messages map[string]*Message
	names    []string
	baseURL  string
}

// LoadCatalog reads every JSON file in dir. Files load in sorted order; a
// later definition of the same name replaces an earlier one.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	c := &Catalog{messages: make(map[string]*Message), baseURL: "https://docs.unity3d.com/ScriptReference/"}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var cf catalogFile
		if err := json.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		for i := range cf.Messages {
			m := cf.Messages[i]
			m.Owner = cf.Owner
			if m.Owner == "" {
				m.Owner = "MonoBehaviour"
			}
			c.messages[m.Name] = &m
		}
	}
	if len(c.messages) == 0 {
		return nil, fmt.Errorf("catalog is empty: no messages found in %q", dir)
	}

	c.names = make([]string, 0, len(c.messages))
	for name := range c.messages {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// SetDocsBaseURL changes the scripting reference root used by DocsURL and
// SearchURL. A trailing slash is added when missing.
func (c *Catalog) SetDocsBaseURL(base string) {
	if base == "" {
		return
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	c.baseURL = base
}

// Lookup returns the message named name, or nil. Names are case-sensitive
// like Unity's own dispatch.
func (c *Catalog) Lookup(name string) *Message {
	return c.messages[name]
}

// Names returns all message names, sorted.
func (c *Catalog) Names() []string {
	return c.names
}

// Len returns the number of messages.
func (c *Catalog) Len() int {
	return len(c.messages)
}

// DocsURL returns the scripting reference page for a message.
func (c *Catalog) DocsURL(m *Message) string {
	return c.baseURL + m.Owner + "." + m.Name + ".html"
}

// SearchURL returns the scripting reference search page for query.
func (c *Catalog) SearchURL(query string) string {
	return c.baseURL + "30_search.html?q=" + url.QueryEscape(query)
}
