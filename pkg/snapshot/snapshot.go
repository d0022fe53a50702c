package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Snapshot is the on-disk shape of a project.
type Snapshot struct {
	Documents []model.DocumentData `json:"documents" yaml:"documents" toml:"documents"`
}

// DetectFormat maps a file extension to a format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", rterrors.New(rterrors.ErrCodeInvalidFormat, "unsupported snapshot file %q (want .json, .yaml, .yml or .toml)", path)
}

// Read decodes a snapshot and validates it.
func Read(r io.Reader, f Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&s)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&s)
		if err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&s)
	default:
		return nil, rterrors.New(rterrors.ErrCodeInvalidFormat, "unknown snapshot format %q", f)
	}
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeInvalidInput, err, "decode %s snapshot", f)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for i := range s.Documents {
		s.Documents[i].Normalize()
	}
	return &s, nil
}

// Write encodes a snapshot.
func Write(w io.Writer, f Format, s *Snapshot) error {
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(s); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(s)
	default:
		return rterrors.New(rterrors.ErrCodeInvalidFormat, "unknown snapshot format %q", f)
	}
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", f, err)
	}
	return nil
}

// Load reads the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	s, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes the snapshot to path, replacing the file atomically.
func Save(path string, s *Snapshot) error {
	f, err := DetectFormat(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, s); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Validate checks document and element identity.
//
// Validate returns an INVALID_INPUT error if:
//   - A document has an empty or duplicate id
//   - A room, view, style or link has an empty id
//   - Two rooms of one document share an id
func (s *Snapshot) Validate() error {
	seen := make(map[model.DocumentID]bool, len(s.Documents))
	for i, d := range s.Documents {
		if d.ID == "" {
			return rterrors.New(rterrors.ErrCodeInvalidInput, "document %d: missing id", i)
		}
		if seen[d.ID] {
			return rterrors.New(rterrors.ErrCodeInvalidInput, "duplicate document id %q", d.ID)
		}
		seen[d.ID] = true

		rooms := make(map[model.ElementID]bool, len(d.Rooms))
		for j, r := range d.Rooms {
			if r.ID == "" {
				return rterrors.New(rterrors.ErrCodeInvalidInput, "document %q: room %d: missing id", d.ID, j)
			}
			if rooms[r.ID] {
				return rterrors.New(rterrors.ErrCodeInvalidInput, "document %q: duplicate room id %q", d.ID, r.ID)
			}
			rooms[r.ID] = true
		}
		for j, v := range d.Views {
			if v.ID == "" {
				return rterrors.New(rterrors.ErrCodeInvalidInput, "document %q: view %d: missing id", d.ID, j)
			}
		}
		for j, st := range d.Styles {
			if st.ID == "" {
				return rterrors.New(rterrors.ErrCodeInvalidInput, "document %q: tag style %d: missing id", d.ID, j)
			}
		}
		for j, l := range d.Links {
			if l.ID == "" {
				return rterrors.New(rterrors.ErrCodeInvalidInput, "document %q: link %d: missing id", d.ID, j)
			}
		}
	}
	return nil
}
