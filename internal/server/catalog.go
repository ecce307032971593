package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attribute is one tag found in a document type, with the values the parser
// extracted for it.
type Attribute struct {
	Tag    string   `yaml:"tag"`
	Values []string `yaml:"values,omitempty"`
}

// Sample returns the first extracted value, if any.
func (a Attribute) Sample() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

// DocType is a document type and its attributes.
type DocType struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes"`
}

// Catalog is the parsed content the main page is rendered from.
type Catalog struct {
	Root  string    `yaml:"root"`
	Types []DocType `yaml:"types"`
}

// Type returns the document type with the given name.
func (c *Catalog) Type(name string) (*DocType, bool) {
	for i := range c.Types {
		if c.Types[i].Name == name {
			return &c.Types[i], true
		}
	}
	return nil, false
}

// Values returns the values of tag, or nil when the type has no such tag.
func (t *DocType) Values(tag string) []string {
	for _, a := range t.Attributes {
		if a.Tag == tag {
			return a.Values
		}
	}
	return nil
}

func (c *Catalog) validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("catalog root is required")
	}
	seen := map[string]bool{}
	for i, t := range c.Types {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("catalog type %d has no name", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("catalog type %q is defined twice", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog reads a YAML catalog from path. An empty path yields the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

const defaultCatalog = `
root: orders
types:
  - name: Order
    attributes:
      - tag: OrderID
        values: ["1001", "1002", "1003"]
      - tag: Customer
        values: ["ACME", "Globex", "Initech"]
      - tag: OrderDate
        values: ["2024-01-05", "2024-01-06", "2024-01-09"]
      - tag: Currency
        values: ["EUR", "EUR", "USD"]
  - name: OrderLine
    attributes:
      - tag: LineNo
        values: ["1", "2", "1", "1"]
      - tag: Product
        values: ["Widget", "Gadget", "Widget", "Sprocket"]
      - tag: Quantity
        values: ["4", "1", "10", "2"]
  - name: Invoice
    attributes:
      - tag: InvoiceNo
        values: ["INV-7"]
      - tag: Amount
        values: ["129.50"]
`

// DefaultCatalog returns the built-in sample catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog([]byte(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return c
}
