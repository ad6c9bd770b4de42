package installer

import (
	"strings"
)

// DefaultBaseURL is the git host used to resolve short owner/repo sources.
const DefaultBaseURL = "https://github.com"

const treeMain = "/tree/main/"

// ParseSource splits an install source into a clone URL and an optional
// subdirectory.
//
//	https://github.com/u/r                 -> https://github.com/u/r, ""
//	https://github.com/u/r/tree/main/sub   -> https://github.com/u/r, "sub"
//	u/r                                    -> <base>/u/r.git, ""
//	u/r/sub/dir                            -> <base>/u/r.git, "sub/dir"
//
// Anything else is returned unchanged with no subdirectory.
func ParseSource(source, base string) (repoURL, subdir string) {
	if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "git@") {
		if idx := strings.Index(source, treeMain); idx >= 0 {
			return source[:idx], source[idx+len(treeMain):]
		}
		return source, ""
	}

	parts := strings.Split(source, "/")
	if len(parts) < 2 {
		return source, ""
	}

	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	repoURL = base + "/" + parts[0] + "/" + parts[1] + ".git"
	if len(parts) > 2 {
		subdir = strings.Join(parts[2:], "/")
	}
	return repoURL, subdir
}

// RepoName returns the last path element of a clone URL without ".git".
func RepoName(repoURL string) string {
	trimmed := strings.TrimRight(repoURL, "/")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}
