package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Root != "orders" {
		t.Errorf("Root = %q", c.Root)
	}
	if len(c.Types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(c.Types))
	}
	order, ok := c.Type("Order")
	if !ok {
		t.Fatal("Order type missing")
	}
	if got := order.Values("Customer"); len(got) != 3 || got[0] != "ACME" {
		t.Errorf("Customer values = %v", got)
	}
	if order.Values("Nope") != nil {
		t.Error("unknown tag should have no values")
	}
	if order.Attributes[0].Sample() != "1001" {
		t.Errorf("Sample = %q", order.Attributes[0].Sample())
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "bad yaml", yaml: "root: [", want: "invalid catalog"},
		{name: "no root", yaml: "types: []", want: "root is required"},
		{name: "nameless type", yaml: "root: r\ntypes:\n  - attributes: []", want: "has no name"},
		{name: "duplicate", yaml: "root: r\ntypes:\n  - name: A\n  - name: A", want: "defined twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "root: customers\ntypes:\n  - name: Customer\n    attributes:\n      - tag: Name\n        values: [Ann]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if c.Root != "customers" || len(c.Types) != 1 {
		t.Errorf("catalog = %+v", c)
	}

	if c, err := LoadCatalog(""); err != nil || c.Root != "orders" {
		t.Errorf("empty path should load the default catalog, got %+v, %v", c, err)
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
