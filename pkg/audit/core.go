package audit

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/kinntalk/skills4ai/pkg/skills"
)

var frontMatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---`)

// frontMatter parses the SKILL.md front matter block.
func (t *Target) frontMatter() (map[string]interface{}, string) {
	data, err := os.ReadFile(t.Abs(skills.FileName))
	if err != nil {
		return nil, "SKILL.md missing"
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(content, "---") {
		return nil, "No YAML frontmatter"
	}

	match := frontMatterPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, "Invalid frontmatter format"
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal([]byte(match[1]), &fm); err != nil {
		return nil, fmt.Sprintf("Frontmatter validation error: %v", err)
	}
	if fm == nil {
		return nil, "Frontmatter validation error: empty frontmatter"
	}
	return fm, ""
}

func stringField(fm map[string]interface{}, key string) (string, bool) {
	v, ok := fm[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func checkFrontMatter(t *Target) Outcome {
	fm, problem := t.frontMatter()
	if problem != "" {
		return fail(problem)
	}

	for _, key := range []string{"name", "description"} {
		if _, ok := fm[key]; !ok {
			return fail(fmt.Sprintf("Missing '%s'", key))
		}
		if s, ok := stringField(fm, key); !ok || strings.TrimSpace(s) == "" {
			return fail(fmt.Sprintf("'%s' must be a non-empty string", key))
		}
	}
	return pass("SKILL.md frontmatter is valid")
}

func checkNameMatch(t *Target) Outcome {
	fm, problem := t.frontMatter()
	if problem != "" {
		return fail("Cannot compare skill name: " + problem)
	}
	name, _ := stringField(fm, "name")
	if name != t.Name {
		return fail(fmt.Sprintf("Frontmatter name '%s' does not match directory name '%s'", name, t.Name))
	}
	return pass(fmt.Sprintf("Frontmatter name matches directory '%s'", t.Name))
}

var allowedTopLevel = map[string]bool{
	skills.FileName:      true,
	skills.ScriptsDir:    true,
	skills.ReferencesDir: true,
	skills.AssetsDir:     true,
	"LICENSE":            true,
	"LICENSE.txt":        true,
	"LICENSE.md":         true,
	"README.md":          true,
	"__pycache__":        true,
}

func checkLayout(t *Target) Outcome {
	entries, err := os.ReadDir(t.Path)
	if err != nil {
		return Outcome{Message: fmt.Sprintf("Could not list skill directory: %v", err), Advisory: true}
	}

	var issues []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || allowedTopLevel[name] {
			continue
		}
		issues = append(issues, fmt.Sprintf("%s: unexpected top-level entry", name))
	}

	for _, dir := range []string{skills.ScriptsDir, skills.ReferencesDir, skills.AssetsDir} {
		children, err := os.ReadDir(t.Abs(dir))
		if err == nil && len(children) == 0 {
			issues = append(issues, fmt.Sprintf("%s/: empty folder", dir))
		}
	}

	if len(issues) > 0 {
		sort.Strings(issues)
		return Outcome{Message: "Found unexpected layout entries:", Details: issues, Advisory: true}
	}
	return pass("Directory layout looks standard")
}

var importPattern = regexp.MustCompile(`(?m)^\s*(?:import|from)\s+([a-zA-Z0-9_]+)`)

func checkDependencies(t *Target) Outcome {
	if !t.Exists(skills.ScriptsDir) {
		return pass("No scripts directory")
	}

	scripts := t.Files(skills.ScriptsDir + "/**/*.py")
	if len(scripts) == 0 {
		return pass("No Python scripts found")
	}

	reqPath := skills.ScriptsDir + "/requirements.txt"
	if !t.Exists(reqPath) {
		return fail("Python scripts found but scripts/requirements.txt is missing")
	}

	imported := map[string]bool{}
	var unreadable []string
	for _, rel := range scripts {
		data, err := os.ReadFile(t.Abs(rel))
		if err != nil {
			unreadable = append(unreadable, fmt.Sprintf("Could not read %s: %v", rel, err))
			continue
		}
		for _, m := range importPattern.FindAllStringSubmatch(string(data), -1) {
			module := m[1]
			if pythonStdlib[module] || module == "scripts" {
				continue
			}
			imported[module] = true
		}
	}

	reqLines, err := t.ReadLines(reqPath)
	if err != nil {
		return fail("Could not read requirements.txt")
	}
	declared := declaredRequirements(reqLines)

	var missing []string
	for module := range imported {
		pkg := strings.ToLower(module)
		if mapped, ok := importToPackage[module]; ok {
			pkg = mapped
		}
		if declared[pkg] || declared[strings.ToLower(module)] {
			continue
		}
		if t.Exists(skills.ScriptsDir+"/"+module+".py") || t.Exists(skills.ScriptsDir+"/"+module+"/__init__.py") {
			continue
		}
		missing = append(missing, fmt.Sprintf("%s (package: %s)", module, pkg))
	}
	sort.Strings(missing)

	if len(missing) > 0 {
		return fail("Potential missing dependencies in requirements.txt: "+strings.Join(missing, ", "), unreadable...)
	}
	if len(unreadable) > 0 {
		return Outcome{Passed: true, Message: "Dependency configuration looks good", Details: unreadable}
	}
	return pass("Dependency configuration looks good")
}

var requirementName = regexp.MustCompile(`^[A-Za-z0-9_.\-]+`)

func declaredRequirements(lines []string) map[string]bool {
	declared := map[string]bool{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName.FindString(line); name != "" {
			declared[strings.ToLower(name)] = true
		}
	}
	return declared
}

func checkPackaging(t *Target) Outcome {
	rel := skills.ScriptsDir + "/package_skill.py"
	if !t.Exists(rel) {
		return pass("No package_skill.py found (skipped)")
	}

	data, err := os.ReadFile(t.Abs(rel))
	if err != nil {
		return fail(fmt.Sprintf("Error checking package script: %v", err))
	}
	content := string(data)

	if strings.Contains(content, "relative_to(skill_path.parent)") {
		return fail("package_skill.py uses 'skill_path.parent' (creates nested zip structure)")
	}
	if !strings.Contains(content, "relative_to(skill_path)") {
		return fail("package_skill.py does not seem to use correct 'relative_to(skill_path)' logic")
	}
	if !strings.Contains(content, "__pycache__") && !strings.Contains(content, ".pyc") {
		return fail("package_skill.py does not appear to filter __pycache__ or .pyc files")
	}
	return pass("Packaging logic looks correct")
}

func checkInitTemplate(t *Target) Outcome {
	rel := skills.ScriptsDir + "/init_skill.py"
	if !t.Exists(rel) {
		return pass("No init_skill.py found (skipped)")
	}

	data, err := os.ReadFile(t.Abs(rel))
	if err != nil {
		return fail(fmt.Sprintf("Error checking init script: %v", err))
	}
	content := string(data)

	if strings.Contains(content, "description: [") && strings.Contains(content, "TODO:") {
		return fail("init_skill.py uses invalid list syntax '[]' for description template")
	}
	if strings.Contains(content, `description: "`) || strings.Contains(content, "description: '") {
		return pass("Template description syntax looks correct")
	}
	return pass("Template description syntax looks safe")
}
