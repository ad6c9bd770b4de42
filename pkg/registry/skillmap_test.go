package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinntalk/skills4ai/pkg/skills"
)

func TestNamesJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Names
		encoded  string
	}{
		{"single string", `"pdf-generation"`, Names{"pdf-generation"}, `"pdf-generation"`},
		{"list", `["a","b"]`, Names{"a", "b"}, `["a","b"]`},
		{"one element list", `["a"]`, Names{"a"}, `"a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Names
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.expected, n)

			out, err := json.Marshal(n)
			require.NoError(t, err)
			assert.Equal(t, tt.encoded, string(out))
		})
	}

	var n Names
	assert.Error(t, json.Unmarshal([]byte(`42`), &n))
}

func TestSkillMapUpsert(t *testing.T) {
	m := NewSkillMap()
	m.Upsert("pdf-generation", MapEntry{
		Description: "Generate PDF",
		Keywords:    []string{"pdf", "Document"},
		Aliases:     []string{"pdf"},
	})
	m.Upsert("docx-writer", MapEntry{Keywords: []string{"document"}})
	m.Upsert("pdf-generation", MapEntry{Keywords: []string{"pdf"}})

	assert.Equal(t, []string{"pdf-generation", "docx-writer"}, m.DetectionRules.PriorityOrder)
	assert.Equal(t, "pdf-generation", m.DetectionRules.ExactMatch["pdf generation"])
	assert.Equal(t, "docx-writer", m.DetectionRules.ExactMatch["docx writer"])
	assert.Equal(t, Names{"pdf-generation"}, m.DetectionRules.PartialMatch["pdf"])
	assert.Equal(t, Names{"pdf-generation", "docx-writer"}, m.DetectionRules.PartialMatch["document"])

	entry := m.Skills["docx-writer"]
	assert.Equal(t, "docx-writer", entry.Name)
	assert.NotNil(t, entry.Aliases)
}

func TestUpsertMapPreservesUnrelatedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skill_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "skills": {"legacy": {"name": "legacy", "description": "old", "keywords": ["old"], "aliases": []}},
  "detection_rules": {
    "priority_order": ["legacy"],
    "exact_match": {"legacy": "legacy"},
    "partial_match": {"old": "legacy", "older": ["legacy", "other"]}
  }
}`), 0o644))

	require.NoError(t, UpsertMap(path, "foo-bar", MapEntryFor("foo-bar", nil)))

	m, err := LoadMap(path)
	require.NoError(t, err)
	assert.Contains(t, m.Skills, "legacy")
	assert.Equal(t, "foo-bar", m.Skills["foo-bar"].Name)
	assert.Equal(t, []string{"legacy", "foo-bar"}, m.DetectionRules.PriorityOrder)
	assert.Equal(t, Names{"legacy"}, m.DetectionRules.PartialMatch["old"])
	assert.Equal(t, Names{"legacy", "other"}, m.DetectionRules.PartialMatch["older"])
	assert.Equal(t, "foo-bar", m.DetectionRules.ExactMatch["foo bar"])
}

func TestUpsertMapKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skill_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": "2.0",
  "skills": {
    "pdf": {"name": "pdf", "description": "old", "keywords": ["pdf"], "aliases": [], "category": "docs"}
  },
  "detection_rules": {
    "priority_order": ["pdf"],
    "exact_match": {"pdf": "pdf"},
    "partial_match": {"pdf": "pdf"},
    "fallback": "pdf"
  }
}`), 0o644))

	require.NoError(t, UpsertMap(path, "pdf", MapEntry{Description: "new", Keywords: []string{"pdf"}}))
	require.NoError(t, UpsertMap(path, "notes", MapEntryFor("notes", nil)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "2.0"`)
	assert.Contains(t, string(data), `"category": "docs"`)
	assert.Contains(t, string(data), `"fallback": "pdf"`)

	m, err := LoadMap(path)
	require.NoError(t, err)
	assert.Equal(t, "new", m.Skills["pdf"].Description)
	assert.JSONEq(t, `"docs"`, string(m.Skills["pdf"].Extra["category"]))
	assert.Nil(t, m.Skills["notes"].Extra)
	assert.JSONEq(t, `"pdf"`, string(m.DetectionRules.Extra["fallback"]))
	assert.JSONEq(t, `"2.0"`, string(m.Extra["version"]))
	assert.Equal(t, []string{"pdf", "notes"}, m.DetectionRules.PriorityOrder)
}

func TestPartialMatchNull(t *testing.T) {
	n := Names{"stale"}
	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Empty(t, n)

	m, err := decodeMap([]byte(`{"detection_rules": {"partial_match": {"pdf": null}}}`))
	require.NoError(t, err)
	assert.Empty(t, m.DetectionRules.PartialMatch["pdf"])

	m.Upsert("pdf-tools", MapEntry{Keywords: []string{"pdf"}})
	assert.Equal(t, Names{"pdf-tools"}, m.DetectionRules.PartialMatch["pdf"])

	out, err := json.Marshal(m.DetectionRules.PartialMatch)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `""`)
}

func TestUpdateMapReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skill_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	require.NoError(t, UpsertMap(path, "a", MapEntry{}))

	m, err := LoadMap(path)
	require.NoError(t, err)
	assert.Len(t, m.Skills, 1)
}

func TestDeriveKeywords(t *testing.T) {
	tests := []struct {
		name        string
		skill       string
		description string
		expected    []string
	}{
		{
			name:     "name only",
			skill:    "foo-bar",
			expected: []string{"foo bar", "foo", "bar"},
		},
		{
			name:     "short segments skipped",
			skill:    "ai-pdf-generation",
			expected: []string{"ai pdf generation", "pdf", "generation"},
		},
		{
			name:        "description words",
			skill:       "pdf",
			description: "Convert Markdown reports into polished PDF documents with themes, tables and charts.",
			expected:    []string{"pdf", "convert", "markdown", "reports", "polished", "documents"},
		},
		{
			name:        "todo placeholder ignored",
			skill:       "foo",
			description: "TODO: Add description for foo",
			expected:    []string{"foo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveKeywords(tt.skill, tt.description))
		})
	}
}

func TestMapEntryFor(t *testing.T) {
	e := MapEntryFor("foo-bar", &skills.Metadata{Name: "foo-bar", Description: "Does things"})
	assert.Equal(t, "foo-bar", e.Name)
	assert.Equal(t, "Does things", e.Description)
	assert.Equal(t, []string{"foo-bar"}, e.Aliases)
	assert.Contains(t, e.Keywords, "foo bar")

	explicit := MapEntryFor("x", &skills.Metadata{Keywords: []string{"k"}, Aliases: []string{"y"}})
	assert.Equal(t, []string{"k"}, explicit.Keywords)
	assert.Equal(t, []string{"y"}, explicit.Aliases)
}
