// Package character holds the static catalog of football legends a fan
// can talk to.
package character

import (
	"context"
	"fmt"
	"strings"

	"github.com/amoghd24/footagents-ai-game/conversation"
)

// Catalog is an immutable, in-memory set of character profiles. It is safe
// for concurrent use.
type Catalog struct {
	order []string
	byID  map[string]conversation.Profile
}

// NewCatalog returns the built-in catalog of legends.
func NewCatalog() *Catalog {
	c, err := NewCatalogFrom(legends)
	if err != nil {
		panic(err) // built-in data is fixed
	}
	return c
}

// NewCatalogFrom builds a catalog from custom profiles. IDs are matched
// case-insensitively and must be unique.
func NewCatalogFrom(profiles []conversation.Profile) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(profiles)),
		byID:  make(map[string]conversation.Profile, len(profiles)),
	}
	for _, p := range profiles {
		id := normalize(p.ID)
		if id == "" || p.Name == "" {
			return nil, fmt.Errorf("character: profile %q needs an id and a name", p.ID)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("character: duplicate id %q", id)
		}
		p.ID = id
		c.byID[id] = p
		c.order = append(c.order, id)
	}
	return c, nil
}

// GetCharacter implements conversation.CharacterLookup.
func (c *Catalog) GetCharacter(_ context.Context, id string) (conversation.Profile, error) {
	return c.Get(id)
}

// Get returns the profile for id, or a NotFound error.
func (c *Catalog) Get(id string) (conversation.Profile, error) {
	key := normalize(id)
	p, ok := c.byID[key]
	if !ok {
		return conversation.Profile{}, conversation.E(conversation.KindNotFound, "character.Get", "legend "+key+" not found")
	}
	return p, nil
}

// IDs returns the character IDs in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Profiles returns every profile in catalog order.
func (c *Catalog) Profiles() []conversation.Profile {
	out := make([]conversation.Profile, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of characters.
func (c *Catalog) Len() int {
	return len(c.order)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
