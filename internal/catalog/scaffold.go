package catalog

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tmdb-api-tester/internal/types"
)

// TagScaffold marks contracts generated from an OpenAPI document
const TagScaffold = "scaffold"

// Scaffold builds a catalog with one shape contract per GET operation.
// Path and required query parameters get sample values that should be reviewed.
func Scaffold(ops []types.Operation) File {
	file := File{}
	names := make(map[string]bool)

	for _, op := range ops {
		if op.Method != "" && op.Method != http.MethodGet {
			continue
		}

		name := op.Summary
		if name == "" || names[name] {
			name = fmt.Sprintf("GET %s", op.Path)
		}
		names[name] = true

		c := types.EndpointContract{
			Name:           name,
			Kind:           types.KindShape,
			Path:           op.Path,
			ExpectedStatus: []int{http.StatusOK},
			Tags:           []string{TagScaffold},
		}

		for _, param := range op.Parameters {
			value := fmt.Sprint(param.Example)
			switch param.In {
			case "path":
				if c.PathParams == nil {
					c.PathParams = make(map[string]string)
				}
				c.PathParams[param.Name] = value
			case "query":
				if !param.Required {
					continue
				}
				if c.Query == nil {
					c.Query = make(map[string]string)
				}
				c.Query[param.Name] = value
			}
		}

		if resp, ok := op.Responses[http.StatusOK]; ok && (len(resp.Required) > 0 || len(resp.Arrays) > 0) {
			c.Shape = &types.Shape{Keys: resp.Required, Arrays: resp.Arrays}
		}

		file.Contracts = append(file.Contracts, c)
	}
	return file
}

// WriteFile writes a catalog as YAML, creating parent directories
func WriteFile(filename string, file File, source string) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	header := fmt.Sprintf("# Generated from %s\n# Review path_params and query values before running.\n", source)
	data = append([]byte(header), data...)

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
