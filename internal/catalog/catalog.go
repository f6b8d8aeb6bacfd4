// Package catalog loads the SAFE metric taxonomy.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/huangsam/safe/schema"
	"gopkg.in/yaml.v3"
)

//go:embed safe.yaml
var defaultCatalog []byte

var (
	defaultOnce sync.Once
	defaultTax  *schema.Taxonomy
	defaultErr  error
)

// Default returns the embedded SAFE catalog. It is parsed once and shared,
// so callers must treat it as read-only.
func Default() (*schema.Taxonomy, error) {
	defaultOnce.Do(func() {
		defaultTax, defaultErr = Parse(defaultCatalog)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("embedded catalog: %w", defaultErr)
		}
	})
	return defaultTax, defaultErr
}

// Load reads a catalog from path. An empty path returns the embedded catalog.
func Load(path string) (*schema.Taxonomy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	tax, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return tax, nil
}

// Parse decodes a single YAML document and validates the resulting taxonomy.
// Unknown fields are rejected.
func Parse(data []byte) (*schema.Taxonomy, error) {
	var tax schema.Taxonomy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tax); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed after first YAML document: %w", err)
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}
	return &tax, nil
}

// Summary is one line of the catalog overview.
type Summary struct {
	Dimension string `json:"dimension"`
	KPIs      int    `json:"kpis"`
	Metrics   int    `json:"metrics"`
}

// Summarize counts KPI themes and metrics per dimension.
func Summarize(tax *schema.Taxonomy) []Summary {
	out := make([]Summary, 0, len(tax.Dimensions))
	for _, dim := range tax.Dimensions {
		s := Summary{Dimension: dim.Name, KPIs: len(dim.KPIs)}
		for _, kpi := range dim.KPIs {
			s.Metrics += len(kpi.Metrics)
		}
		out = append(out, s)
	}
	return out
}
