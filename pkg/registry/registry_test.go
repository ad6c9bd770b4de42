package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "skills.json")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	entry := Entry{
		Source:    "https://github.com/octocat/hello-world.git",
		Subdir:    "",
		Version:   "7fd1a60b01f91b314f59955a4e4d4e80d8edf11d",
		UpdatedAt: Timestamp(now),
	}
	require.NoError(t, Upsert(path, "hello-world", entry))

	r, err := Load(path)
	require.NoError(t, err)
	got, ok := r.Skills["hello-world"]
	require.True(t, ok)
	assert.Equal(t, entry.Source, got.Source)
	assert.Equal(t, entry.Subdir, got.Subdir)
	assert.Equal(t, entry.Version, got.Version)

	ts, err := ParseTimestamp(got.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, ts.Equal(now))
}

func TestUpsertPreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, Upsert(path, "a", Entry{Source: SourceLocal, Version: VersionUnknown}))
	require.NoError(t, Upsert(path, "b", Entry{Source: SourceLocal, Version: VersionUnknown}))
	require.NoError(t, Upsert(path, "a", Entry{Source: "https://x/y.git", Version: "abc"}))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Skills, 2)
	assert.Equal(t, "https://x/y.git", r.Skills["a"].Source)
}

func TestUpdateReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, Upsert(path, "a", Entry{Source: SourceLocal}))
	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Skills, 1)
}

func TestLoadMissingFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "skills.json"))
	require.NoError(t, err)
	assert.NotNil(t, r.Skills)
	assert.Empty(t, r.Skills)
}

func TestRegistryFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, Upsert(path, "foo-bar", Entry{
		Source:    SourceLocal,
		Version:   VersionUnknown,
		UpdatedAt: "2025-03-04T05:06:07Z",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "skills": {
    "foo-bar": {
      "source": "local",
      "subdir": "",
      "version": "unknown",
      "updated_at": "2025-03-04T05:06:07Z"
    }
  }
}
`, string(data))
}

func TestConcurrentUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			assert.NoError(t, Upsert(path, name, Entry{Source: SourceLocal}))
		}(i)
	}
	wg.Wait()

	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Skills, 8)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2025-03-04T05:06:07Z",
		"2025-03-04T05:06:07+08:00",
		"2025-03-04T05:06:07.123456",
		"2025-03-04T05:06:07",
	} {
		_, err := ParseTimestamp(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestEntryHelpers(t *testing.T) {
	remote := Entry{Source: "https://github.com/a/b.git", Version: "0123456789abcdef"}
	assert.True(t, remote.IsRemote())
	assert.Equal(t, "0123456", remote.ShortVersion())

	assert.False(t, Entry{Source: SourceLocal, Version: "abc"}.IsRemote())
	assert.False(t, Entry{Source: "https://x", Version: VersionUnknown}.IsRemote())
	assert.Equal(t, VersionUnknown, Entry{}.ShortVersion())
	assert.Equal(t, "abc", Entry{Version: "abc"}.ShortVersion())
}

func TestUpsertKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "schema": 1,
  "skills": {
    "notes": {"source": "local", "version": "unknown", "pinned": true},
    "pdf": {"source": "local", "version": "unknown", "owner": "docs-team"}
  }
}`), 0o644))

	require.NoError(t, Upsert(path, "notes", Entry{Source: SourceLocal, Version: VersionUnknown, UpdatedAt: "2025-03-04T05:06:07Z"}))
	require.NoError(t, Upsert(path, "extra", Entry{Source: SourceLocal}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema": 1`)
	assert.Contains(t, string(data), `"pinned": true`)
	assert.Contains(t, string(data), `"owner": "docs-team"`)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04T05:06:07Z", r.Skills["notes"].UpdatedAt)
	assert.JSONEq(t, `true`, string(r.Skills["notes"].Extra["pinned"]))
	assert.Nil(t, r.Skills["extra"].Extra)
	assert.JSONEq(t, `1`, string(r.Extra["schema"]))
}

func TestEntryJSONWithoutExtraFields(t *testing.T) {
	out, err := json.Marshal(Entry{Source: "https://example.com/x.git", Version: "abc"})
	require.NoError(t, err)
	assert.Equal(t, `{"source":"https://example.com/x.git","subdir":"","version":"abc","updated_at":""}`, string(out))

	var e Entry
	require.NoError(t, json.Unmarshal(out, &e))
	assert.Nil(t, e.Extra)
}
