package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

// MapEntry is the discovery metadata of one skill.
type MapEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Aliases     []string `json:"aliases"`

	Extra map[string]json.RawMessage `json:"-"`
}

type mapEntryFields MapEntry

// UnmarshalJSON implements json.Unmarshaler.
func (e *MapEntry) UnmarshalJSON(data []byte) error {
	var f mapEntryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "name", "description", "keywords", "aliases")
	if err != nil {
		return err
	}
	f.Extra = extra
	*e = MapEntry(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e MapEntry) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(mapEntryFields(e), e.Extra)
}

// Names is a partial_match target: a single skill name or a list of them.
// It decodes either form and encodes a single name as a plain string.
type Names []string

// UnmarshalJSON implements json.Unmarshaler.
func (n *Names) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*n = Names{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "partial_match value must be a string or a list of strings")
	}
	*n = Names(list)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Names) MarshalJSON() ([]byte, error) {
	if len(n) == 1 {
		return json.Marshal(n[0])
	}
	return json.Marshal([]string(n))
}

// Contains reports whether name is in n.
func (n Names) Contains(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}

// DetectionRules decide which skill a user request refers to.
type DetectionRules struct {
	PriorityOrder []string         `json:"priority_order"`
	ExactMatch    map[string]string `json:"exact_match"`
	PartialMatch  map[string]Names  `json:"partial_match"`

	Extra map[string]json.RawMessage `json:"-"`
}

type detectionRulesFields DetectionRules

// UnmarshalJSON implements json.Unmarshaler.
func (d *DetectionRules) UnmarshalJSON(data []byte) error {
	var f detectionRulesFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "priority_order", "exact_match", "partial_match")
	if err != nil {
		return err
	}
	f.Extra = extra
	*d = DetectionRules(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DetectionRules) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(detectionRulesFields(d), d.Extra)
}

// SkillMap is the skill_map.json document. Members the structs do not
// model are carried in the Extra fields and survive a rewrite.
type SkillMap struct {
	Skills         map[string]MapEntry `json:"skills"`
	DetectionRules DetectionRules      `json:"detection_rules"`

	Extra map[string]json.RawMessage `json:"-"`
}

type skillMapFields SkillMap

// UnmarshalJSON implements json.Unmarshaler.
func (m *SkillMap) UnmarshalJSON(data []byte) error {
	var f skillMapFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := unknownFields(data, "skills", "detection_rules")
	if err != nil {
		return err
	}
	f.Extra = extra
	*m = SkillMap(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m SkillMap) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(skillMapFields(m), m.Extra)
}

// NewSkillMap returns an empty skill map.
func NewSkillMap() *SkillMap {
	m := &SkillMap{}
	m.normalize()
	return m
}

func (m *SkillMap) normalize() {
	if m.Skills == nil {
		m.Skills = map[string]MapEntry{}
	}
	if m.DetectionRules.PriorityOrder == nil {
		m.DetectionRules.PriorityOrder = []string{}
	}
	if m.DetectionRules.ExactMatch == nil {
		m.DetectionRules.ExactMatch = map[string]string{}
	}
	if m.DetectionRules.PartialMatch == nil {
		m.DetectionRules.PartialMatch = map[string]Names{}
	}
}

// Upsert records e under name. It appends name to the priority order,
// maps the spaced name as an exact match and adds every keyword to the
// partial matches. A keyword already claimed by another skill becomes a
// list holding both.
func (m *SkillMap) Upsert(name string, e MapEntry) {
	m.normalize()
	e.Name = name
	if e.Keywords == nil {
		e.Keywords = []string{}
	}
	if e.Aliases == nil {
		e.Aliases = []string{}
	}
	if prev, ok := m.Skills[name]; ok && e.Extra == nil {
		e.Extra = prev.Extra
	}
	m.Skills[name] = e

	rules := &m.DetectionRules
	if !Names(rules.PriorityOrder).Contains(name) {
		rules.PriorityOrder = append(rules.PriorityOrder, name)
	}
	rules.ExactMatch[skills.Spaced(name)] = name

	for _, kw := range e.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		existing := rules.PartialMatch[kw]
		if !existing.Contains(name) {
			rules.PartialMatch[kw] = append(existing, name)
		}
	}
}

// LoadMap reads skill_map.json. A missing file yields an empty map.
func LoadMap(path string) (*SkillMap, error) {
	data, err := lockedfile.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSkillMap(), nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return decodeMap(data)
}

func decodeMap(data []byte) (*SkillMap, error) {
	m := &SkillMap{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, m); err != nil {
			return nil, errors.Wrap(err, "failed to parse skill map")
		}
	}
	m.normalize()
	return m, nil
}

// UpdateMap applies fn to the skill map at path under an exclusive lock.
func UpdateMap(path string, fn func(*SkillMap) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create skill map directory")
	}

	return lockedfile.Transform(path, func(data []byte) ([]byte, error) {
		m, err := decodeMap(data)
		if err != nil {
			logger.L.WithError(err).Warnf("could not read existing %s, creating a new one", filepath.Base(path))
			m = NewSkillMap()
		}
		if err := fn(m); err != nil {
			return nil, err
		}
		return encodeJSON(m)
	})
}

// UpsertMap writes a single skill map entry.
func UpsertMap(path, name string, e MapEntry) error {
	return UpdateMap(path, func(m *SkillMap) error {
		m.Upsert(name, e)
		return nil
	})
}

var (
	wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+#]*`)
	stopWords   = map[string]bool{
		"todo": true, "this": true, "that": true, "with": true, "when": true,
		"from": true, "into": true, "your": true, "skill": true, "skills": true,
		"what": true, "which": true, "about": true, "should": true, "using": true,
		"used": true, "also": true, "them": true, "then": true, "there": true,
		"their": true, "these": true, "those": true, "will": true, "have": true,
		"include": true, "specific": true, "complete": true, "informative": true,
		"explanation": true, "does": true, "description": true, "add": true,
	}
)

// maxDescriptionKeywords caps keywords taken from a description.
const maxDescriptionKeywords = 5

// DeriveKeywords builds keywords for a skill without explicit ones: the
// spaced name, each name segment of three or more characters, and up to
// five distinctive words of the description.
func DeriveKeywords(name, description string) []string {
	var keywords []string
	seen := map[string]bool{}
	add := func(kw string) {
		if kw != "" && !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}

	add(skills.Spaced(name))
	for _, part := range strings.Split(strings.ToLower(name), "-") {
		if len(part) >= 3 {
			add(part)
		}
	}

	fromDescription := 0
	for _, word := range wordPattern.FindAllString(description, -1) {
		if fromDescription == maxDescriptionKeywords {
			break
		}
		word = strings.ToLower(word)
		if len(word) < 4 || stopWords[word] || seen[word] {
			continue
		}
		add(word)
		fromDescription++
	}

	return keywords
}

// MapEntryFor builds the skill map entry for an installed skill from its
// front matter, deriving keywords and aliases when the front matter has none.
func MapEntryFor(name string, m *skills.Metadata) MapEntry {
	e := MapEntry{Name: name}
	if m != nil {
		e.Description = m.Description
		e.Keywords = append([]string(nil), m.Keywords...)
		e.Aliases = append([]string(nil), m.Aliases...)
	}
	if len(e.Keywords) == 0 {
		e.Keywords = DeriveKeywords(name, e.Description)
	}
	if len(e.Aliases) == 0 {
		e.Aliases = []string{name}
	}
	return e
}
