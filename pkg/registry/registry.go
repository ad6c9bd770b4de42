// Package registry maintains the two JSON documents that sit next to the
// installed skills: skills.json (provenance of each skill) and
// skill_map.json (discovery metadata and detection rules).
//
// Every write is a read-modify-write under an exclusive file lock, so
// concurrent skills4ai processes never interleave partial documents.
package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/kinntalk/skills4ai/pkg/logger"
)

const (
	// SourceLocal marks skills created in place rather than cloned.
	SourceLocal = "local"
	// VersionUnknown marks skills without a known commit.
	VersionUnknown = "unknown"
)

// Entry is the provenance record of one installed skill.
type Entry struct {
	Source    string `json:"source"`
	Subdir    string `json:"subdir"`
	Version   string `json:"version"`
	UpdatedAt string `json:"updated_at"`

	// Extra holds members added by other tools; they are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

type entryFields Entry

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var f entryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "source", "subdir", "version", "updated_at")
	if err != nil {
		return err
	}
	f.Extra = extra
	*e = Entry(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(entryFields(e), e.Extra)
}

// IsRemote reports whether the entry points at a git source with a known commit.
func (e Entry) IsRemote() bool {
	return e.Source != "" && e.Source != SourceLocal && e.Version != "" && e.Version != VersionUnknown
}

// ShortVersion returns the first seven characters of the commit.
func (e Entry) ShortVersion() string {
	if e.Version == "" {
		return VersionUnknown
	}
	if len(e.Version) > 7 && e.Version != VersionUnknown {
		return e.Version[:7]
	}
	return e.Version
}

// Registry is the skills.json document.
type Registry struct {
	Skills map[string]Entry `json:"skills"`

	Extra map[string]json.RawMessage `json:"-"`
}

type registryFields Registry

// UnmarshalJSON implements json.Unmarshaler.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var f registryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "skills")
	if err != nil {
		return err
	}
	f.Extra = extra
	*r = Registry(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Registry) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(registryFields(r), r.Extra)
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{Skills: map[string]Entry{}}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Timestamp formats t as an ISO-8601 timestamp with offset.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTimestamp parses an ISO-8601 timestamp, with or without offset.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, errors.Wrapf(lastErr, "invalid timestamp %q", s)
}

// Load reads skills.json. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	data, err := lockedfile.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return decodeRegistry(data)
}

func decodeRegistry(data []byte) (*Registry, error) {
	r := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errors.Wrap(err, "failed to parse skills registry")
	}
	if r.Skills == nil {
		r.Skills = map[string]Entry{}
	}
	return r, nil
}

// Update applies fn to the registry at path under an exclusive lock and
// writes the result back. An unparsable existing file is replaced.
func Update(path string, fn func(*Registry) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create registry directory")
	}

	return lockedfile.Transform(path, func(data []byte) ([]byte, error) {
		r, err := decodeRegistry(data)
		if err != nil {
			logger.L.WithError(err).Warnf("could not read existing %s, creating a new one", filepath.Base(path))
			r = New()
		}
		if err := fn(r); err != nil {
			return nil, err
		}
		return encodeJSON(r)
	})
}

// Upsert writes a single entry. Extra members of an entry already stored
// under name are kept unless entry carries its own.
func Upsert(path, name string, entry Entry) error {
	return Update(path, func(r *Registry) error {
		if prev, ok := r.Skills[name]; ok && entry.Extra == nil {
			entry.Extra = prev.Extra
		}
		r.Skills[name] = entry
		return nil
	})
}

func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode registry")
	}
	return buf.Bytes(), nil
}
