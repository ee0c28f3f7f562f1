// Package production provides production integrations: definition export,
// visualization and metrics.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statenode/internal/core"
)

// Format selects the serialization of an exported definition.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for formats other than json and yaml.
var ErrUnknownFormat = errors.New("unknown export format")

// Encode writes def to w in the given format.
func Encode(w io.Writer, def core.Definition, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode reads a definition previously written by Encode.
func Decode(data []byte, format Format) (core.Definition, error) {
	var def core.Definition
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &def); err != nil {
			return core.Definition{}, fmt.Errorf("json unmarshal: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return core.Definition{}, fmt.Errorf("yaml unmarshal: %w", err)
		}
	default:
		return core.Definition{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return def, nil
}

// FileExporter stores machine definitions as one file per machine id.
type FileExporter struct {
	dir    string
	format Format
}

// NewFileExporter creates a FileExporter, ensuring the directory exists.
func NewFileExporter(dir string, format Format) (*FileExporter, error) {
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileExporter{dir: dir, format: format}, nil
}

func (p *FileExporter) path(id string) string {
	return filepath.Join(p.dir, id+"."+string(p.format))
}

// Save writes the definition of m.
func (p *FileExporter) Save(ctx context.Context, m *core.Machine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	def := m.Definition()
	fn := p.path(def.ID)
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("create %s: %w", fn, err)
	}
	if err := Encode(f, def, p.format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

// Load reads the stored definition of the machine with the given root id.
func (p *FileExporter) Load(ctx context.Context, machineID string) (core.Definition, error) {
	if err := ctx.Err(); err != nil {
		return core.Definition{}, err
	}
	fn := p.path(machineID)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Definition{}, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return core.Definition{}, fmt.Errorf("read %s: %w", fn, err)
	}
	return Decode(data, p.format)
}
