package registry

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/skills"
)

// ScanResult is one skill folder found by Scan.
type ScanResult struct {
	Name  string
	Entry Entry
	// New is true when the skill had no registry entry before.
	New bool
}

// Scan rebuilds registry entries from the skill folders under skillsDir.
// Entries of remotely installed skills keep their provenance. Other
// folders take their source from the SKILL.md front matter, or local.
func Scan(skillsDir string, existing *Registry, now time.Time) ([]ScanResult, error) {
	discovery, err := skills.NewDiscovery(skills.WithSkillDirs(skillsDir))
	if err != nil {
		return nil, err
	}
	found, err := discovery.DiscoverSkills()
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan skills")
	}
	if existing == nil {
		existing = New()
	}

	results := make([]ScanResult, 0, len(found))
	for name, skill := range found {
		prev, known := existing.Skills[name]
		if known && prev.Source != "" && prev.Source != SourceLocal {
			results = append(results, ScanResult{Name: name, Entry: prev})
			continue
		}

		entry := Entry{
			Source:    SourceLocal,
			Subdir:    "",
			Version:   VersionUnknown,
			UpdatedAt: Timestamp(now),
		}
		if skill.Metadata != nil && skill.Metadata.Source != "" {
			entry.Source = skill.Metadata.Source
		}
		if known {
			entry.Extra = prev.Extra
		}
		if known && prev.Source == entry.Source && prev.Version == entry.Version && prev.UpdatedAt != "" {
			entry.UpdatedAt = prev.UpdatedAt
		}
		results = append(results, ScanResult{Name: name, Entry: entry, New: !known})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// Sync replaces the registry at path with the result of scanning
// skillsDir. Entries whose folders are gone are dropped. With dryRun the
// registry is left untouched.
func Sync(skillsDir, path string, dryRun bool, now time.Time) ([]ScanResult, error) {
	if dryRun {
		existing, err := Load(path)
		if err != nil {
			existing = New()
		}
		return Scan(skillsDir, existing, now)
	}

	var results []ScanResult
	err := Update(path, func(r *Registry) error {
		var err error
		results, err = Scan(skillsDir, r, now)
		if err != nil {
			return err
		}
		r.Skills = make(map[string]Entry, len(results))
		for _, res := range results {
			r.Skills[res.Name] = res.Entry
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to sync registry")
	}
	return results, nil
}
