package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/mockschema/internal/schema"
)

// IsYAML reports whether path names a YAML schema file.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ReadFile imports the schema stored at path. The format follows the file
// extension; anything that is not .yaml or .yml is read as JSON.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	if IsYAML(path) {
		return ImportYAML(data)
	}
	return Import(data)
}

// WriteFile exports s to path, replacing any existing file.
func WriteFile(path string, s *schema.Schema) error {
	var (
		data []byte
		err  error
	)
	if IsYAML(path) {
		data, err = ExportYAML(s)
	} else {
		data, err = Export(s)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}

// JSONInput returns a JSON file holding the schema at path, for consumers
// that only read JSON. A JSON path is returned unchanged. A YAML file is
// converted into <base>.json inside a new temporary directory so that
// output named after the schema keeps its name. cleanup removes that
// directory and is never nil.
func JSONInput(path string) (jsonPath string, cleanup func(), err error) {
	cleanup = func() {}
	if !IsYAML(path) {
		return path, cleanup, nil
	}

	res, err := ReadFile(path)
	if err != nil {
		return "", cleanup, err
	}
	data, err := Export(res.Schema)
	if err != nil {
		return "", cleanup, err
	}

	dir, err := os.MkdirTemp("", "mockschema-")
	if err != nil {
		return "", cleanup, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	jsonPath = filepath.Join(dir, base+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write JSON copy: %w", err)
	}
	return jsonPath, cleanup, nil
}
