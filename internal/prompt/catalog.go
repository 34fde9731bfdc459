// Package prompt builds the rewrite prompt from a TOML catalog and cleans the
// model's output.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/example/pebble/internal/core/stage"
)

//go:embed default.toml
var defaultCatalog []byte

// Catalog holds the text fragments a prompt is assembled from.
type Catalog struct {
	Preamble string            `toml:"preamble"`
	Rules    []string          `toml:"rules"`
	Examples []string          `toml:"examples"`
	Guides   map[string]string `toml:"guides"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt catalog: %v", err))
	}
	return c
}

// Load reads a catalog from path. An empty path returns the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing prompt catalog: %w", err)
	}
	for s := stage.Wearing; s <= stage.Terminal; s++ {
		if strings.TrimSpace(c.Guides[strconv.Itoa(int(s))]) == "" {
			return nil, fmt.Errorf("prompt catalog: missing guide for stage %d", s)
		}
	}
	return &c, nil
}

// Build assembles the prompt for rewriting text at stage s.
func (c *Catalog) Build(text string, s stage.Stage) string {
	var b strings.Builder
	b.WriteString(c.Preamble)
	b.WriteString("\n\nRules\n")
	for _, r := range c.Rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString("\nDirection\n")
	b.WriteString(c.Guides[strconv.Itoa(int(s))])
	if len(c.Examples) > 0 {
		b.WriteString("\n\nExamples (form only)\n")
		for _, e := range c.Examples {
			b.WriteString("- ")
			b.WriteString(e)
			b.WriteByte('\n')
		}
	} else {
		b.WriteByte('\n')
	}
	b.WriteString("\nOriginal\n")
	b.WriteString(text)
	b.WriteString("\n\nResult")
	return strings.TrimSpace(b.String())
}
