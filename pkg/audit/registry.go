package audit

import (
	"fmt"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

func checkRegistry(t *Target) Outcome {
	if t.SkillsDir == "" {
		return pass("No skills directory given (skipped)")
	}

	var issues []string

	reg, err := registry.Load(config.RegistryPath(t.SkillsDir))
	switch {
	case err != nil:
		issues = append(issues, fmt.Sprintf("%s: %v", config.RegistryFile, err))
	default:
		if _, ok := reg.Skills[t.Name]; !ok {
			issues = append(issues, fmt.Sprintf("%s: no entry for '%s'", config.RegistryFile, t.Name))
		}
	}

	m, err := registry.LoadMap(config.SkillMapPath(t.SkillsDir))
	switch {
	case err != nil:
		issues = append(issues, fmt.Sprintf("%s: %v", config.SkillMapFile, err))
	default:
		entry, ok := m.Skills[t.Name]
		if !ok {
			issues = append(issues, fmt.Sprintf("%s: no entry for '%s'", config.SkillMapFile, t.Name))
		} else if entry.Name != t.Name {
			issues = append(issues, fmt.Sprintf("%s: entry '%s' has name '%s'", config.SkillMapFile, t.Name, entry.Name))
		}
	}

	if len(issues) > 0 {
		return fail("Skill is not consistently registered:", issues...)
	}
	return pass("Skill is registered in skills.json and skill_map.json")
}
