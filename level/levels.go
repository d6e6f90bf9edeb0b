package level

import (
	"embed"
	"errors"
	"fmt"
	"sort"
)

// DefaultLevel is loaded when no level is requested
const DefaultLevel = "lab"

// ErrUnknownLevel is returned by Load for names with no bundled level
var ErrUnknownLevel = errors.New("unknown level")

//go:embed levels/*.txt
var levelFiles embed.FS

// Meta describes a bundled level
type Meta struct {
	Name       string  `json:"name"`
	TileSize   float64 `json:"tileSize"`
	WallHeight float64 `json:"wallHeight"`
	Sky        string  `json:"sky"`
	File       string  `json:"-"`
}

var catalog = map[string]Meta{
	"lab":  {Name: "lab", TileSize: 1, WallHeight: 1, Sky: "sky/lab.png", File: "levels/lab.txt"},
	"ohio": {Name: "ohio", TileSize: 2, WallHeight: 1.5, Sky: "sky/ohio.png", File: "levels/ohio.txt"},
}

// Names returns the bundled level names, sorted
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the metadata of a bundled level
func Lookup(name string) (Meta, bool) {
	m, ok := catalog[name]
	return m, ok
}

// Load parses a bundled level by name
func Load(name string) (*Grid, Meta, error) {
	m, ok := catalog[name]
	if !ok {
		return nil, Meta{}, fmt.Errorf("load %q: %w", name, ErrUnknownLevel)
	}
	raw, err := levelFiles.ReadFile(m.File)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("read %s: %w", m.File, err)
	}
	return Parse(string(raw), m.TileSize, m.WallHeight), m, nil
}
