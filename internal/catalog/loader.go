package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"tmdb-api-tester/internal/contract"
	"tmdb-api-tester/internal/types"
)

// File is the on-disk catalog format
type File struct {
	Contracts []types.EndpointContract `yaml:"contracts"`
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(filename string) ([]types.EndpointContract, error) {
	if filename == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	contracts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", filename, err)
	}
	return contracts, nil
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) ([]types.EndpointContract, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i := range file.Contracts {
		if file.Contracts[i].Kind == types.KindNegative {
			file.Contracts[i].ExpectFailure = true
		}
	}
	if err := Validate(file.Contracts); err != nil {
		return nil, err
	}
	return file.Contracts, nil
}

// Validate checks that every contract can be executed
func Validate(contracts []types.EndpointContract) error {
	if len(contracts) == 0 {
		return fmt.Errorf("catalog has no contracts")
	}

	seen := make(map[string]bool, len(contracts))
	for i, c := range contracts {
		if c.Name == "" {
			return fmt.Errorf("contract %d: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("contract %q: duplicate name", c.Name)
		}
		seen[c.Name] = true

		if c.Path == "" {
			return fmt.Errorf("contract %q: path is required", c.Name)
		}
		if c.Kind != "" && !c.Kind.Valid() {
			return fmt.Errorf("contract %q: unknown kind %q", c.Name, c.Kind)
		}
		for _, code := range append(append([]int{}, c.ExpectedStatus...), c.FailureStatus...) {
			if code < 100 || code > 599 {
				return fmt.Errorf("contract %q: invalid status code %d", c.Name, code)
			}
		}
		if t := c.Timing; t != nil {
			if c.ResolvedKind() != types.KindTiming {
				return fmt.Errorf("contract %q: timing policy on a %s contract", c.Name, c.ResolvedKind())
			}
			if t.Samples != 0 && t.Samples < 2 {
				return fmt.Errorf("contract %q: timing samples must be at least 2", c.Name)
			}
			if t.Ratio < 0 || t.Ratio > 1 {
				return fmt.Errorf("contract %q: timing ratio must be in (0, 1]", c.Name)
			}
		}
		if err := contract.ValidateShape(c.Shape); err != nil {
			return fmt.Errorf("contract %q: %w", c.Name, err)
		}
	}
	return nil
}

// Filter keeps contracts whose name matches any of the glob patterns in only
// and that carry at least one of tags. Empty lists do not filter. Order is preserved.
func Filter(contracts []types.EndpointContract, only, tags []string) ([]types.EndpointContract, error) {
	for _, p := range only {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid name pattern %q: %w", p, err)
		}
	}

	var kept []types.EndpointContract
	for _, c := range contracts {
		if len(only) > 0 && !matchesAny(only, c.Name) {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(c, tags) {
			continue
		}
		kept = append(kept, c)
	}
	return kept, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func hasAnyTag(c types.EndpointContract, tags []string) bool {
	for _, t := range tags {
		if c.HasTag(t) {
			return true
		}
	}
	return false
}
