package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuCategory groups menu items of a base. Categories are shown by Order.
type MenuCategory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Base         string             `bson:"base" json:"base"`
	CategoryName string             `bson:"category_name" json:"category_name"`
	Order        int                `bson:"order" json:"order"`
}

// MenuItem is a single link in the top menu.
type MenuItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Base       string             `bson:"base" json:"base"`
	CategoryID primitive.ObjectID `bson:"category_id" json:"category_id"`
	ItemName   string             `bson:"item_name" json:"item_name"`
	URL        string             `bson:"url" json:"url"`
	Order      int                `bson:"order" json:"order"`
}

// MenuRow is the flattened (category, item) projection returned by the menu query.
type MenuRow struct {
	CategoryName string `bson:"category_name" json:"category_name"`
	ItemName     string `bson:"item_name" json:"item_name"`
	URL          string `bson:"url" json:"url"`
}

// Menu maps category names to their items. Categories keep insertion order,
// which is also the order of the keys in its JSON form.
type Menu struct {
	categories []string
	items      map[string][]MenuRow
}

// NewMenu returns an empty menu.
func NewMenu() *Menu {
	return &Menu{items: make(map[string][]MenuRow)}
}

// Add appends row to its category, creating the category on first sight.
func (m *Menu) Add(row MenuRow) {
	if m.items == nil {
		m.items = make(map[string][]MenuRow)
	}
	if _, ok := m.items[row.CategoryName]; !ok {
		m.categories = append(m.categories, row.CategoryName)
	}
	m.items[row.CategoryName] = append(m.items[row.CategoryName], row)
}

// Categories returns category names in insertion order.
func (m *Menu) Categories() []string {
	return m.categories
}

// Items returns the items of a category, nil if it does not exist.
func (m *Menu) Items(category string) []MenuRow {
	return m.items[category]
}

// MarshalJSON encodes the menu as an object keyed by category name.
func (m *Menu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.items[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a menu object, keeping the key order of the input.
func (m *Menu) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("menu: expected object, got %v", tok)
	}

	m.categories = nil
	m.items = make(map[string][]MenuRow)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("menu: expected category name, got %v", tok)
		}
		var rows []MenuRow
		if err := dec.Decode(&rows); err != nil {
			return fmt.Errorf("menu: category %q: %w", name, err)
		}
		if _, seen := m.items[name]; !seen {
			m.categories = append(m.categories, name)
		}
		m.items[name] = append(m.items[name], rows...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
