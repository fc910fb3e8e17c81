package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
	"instance-allocator/internal/logging"
)

// FileSource loads a catalog from a .json, .yaml/.yml or .hcl file
type FileSource struct {
	Path string
}

// NewFileSource creates a file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns "file"
func (s *FileSource) Name() string {
	return "file"
}

// Load reads and decodes the file
func (s *FileSource) Load(ctx context.Context) (types.Catalog, error) {
	src, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Catalog("failed to read catalog file", err).WithContext("path", s.Path)
	}

	c, err := Decode(s.Path, src)
	if err != nil {
		return nil, err
	}

	logging.Named("catalog.file").Debug("catalog loaded",
		zap.String("path", s.Path),
		zap.Int("regions", len(c)))
	return c, nil
}

// Decode parses catalog bytes using the format implied by filename's extension
func Decode(filename string, src []byte) (types.Catalog, error) {
	var c types.Catalog

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		if err := json.Unmarshal(src, &c); err != nil {
			return nil, errors.Catalog("invalid JSON catalog", err).WithContext("path", filename)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, &c); err != nil {
			return nil, errors.Catalog("invalid YAML catalog", err).WithContext("path", filename)
		}
	case ".hcl":
		parsed, err := decodeHCL(filename, src)
		if err != nil {
			return nil, err
		}
		c = parsed
	default:
		return nil, errors.Newf(errors.TypeCatalog, "unsupported catalog format %q (want .json, .yaml, .yml or .hcl)", ext).
			WithContext("path", filename)
	}

	if c == nil {
		c = types.Catalog{}
	}
	for region, prices := range c {
		if prices == nil {
			c[region] = types.RegionPrices{}
		}
	}
	return c, nil
}

// Encode renders a catalog in the format implied by filename's extension
func Encode(filename string, c types.Catalog) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		return json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		return yaml.Marshal(c)
	case ".hcl":
		return encodeHCL(c), nil
	default:
		return nil, errors.Newf(errors.TypeCatalog, "unsupported catalog format %q", ext)
	}
}

// WriteFile encodes a catalog and writes it to path
func WriteFile(path string, c types.Catalog) error {
	data, err := Encode(path, c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Catalog("failed to create catalog directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Catalog("failed to write catalog file", err).WithContext("path", path)
	}
	return nil
}
