package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// File is the on-disk catalog format: flat lists of every record kind.
type File struct {
	Manufacturers []Manufacturer `json:"manufacturers"`
	Categories    []Category     `json:"categories"`
	Components    []Component    `json:"components"`
}

// ReadFile loads a JSON catalog file into a new Memory catalog.
func ReadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a JSON catalog from r into a new Memory catalog.
// Components must reference known categories and carry a valid type.
func Read(r io.Reader) (*Memory, error) {
	var data File
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	m := NewMemory()
	for _, mf := range data.Manufacturers {
		m.AddManufacturer(mf)
	}
	for _, c := range data.Categories {
		if c.ID == "" {
			return nil, fmt.Errorf("category %q: missing id", c.Name.EN)
		}
		m.AddCategory(c)
	}
	for _, c := range data.Components {
		if c.ID == "" {
			return nil, fmt.Errorf("component %q: missing id", c.Name)
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("component %s: invalid type %q", c.ID, c.Type)
		}
		if _, ok := m.categories[c.Category]; !ok {
			return nil, fmt.Errorf("component %s: unknown category %q", c.ID, c.Category)
		}
		m.AddComponent(c)
	}
	return m, nil
}
