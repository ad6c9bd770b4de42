package presenter

// Icons are the status markers printed in front of user-facing lines.
type Icons struct {
	Pass   string
	Fail   string
	Warn   string
	Info   string
	Update string
}

// Messages is the static table of user-visible strings shared by every
// subcommand. Exactly one table is selected at startup (see SetMessages);
// nothing is looked up or substituted at runtime after that.
type Messages struct {
	Icons Icons

	// Initializer
	InitNextSteps []string
	NameRules     []string

	// Update-all
	UpdateStart        string
	UpdatePhaseCheck   string
	UpdatePhaseUpdate  string
	UpdateNone         string
	UpdateFound        string // %d
	UpdateForceHint    string
	UpdateSummary      string
	UpdateTotalChecked string // %d
	UpdateAvailable    string // %d
	UpdateSucceeded    string // %d
	UpdateFailed       string // %d

	// Auditor
	AuditPassed string
	AuditWarned string
	AuditFailed string

	BrowserHint string
	PandocHint  string
}

var sharedMessages = Messages{
	InitNextSteps: []string{
		"1. Edit SKILL.md to complete TODO items and update description",
		"2. Customize or delete example files in scripts/, references/, and assets/",
		"3. Run the auditor when ready to check skill structure",
	},
	NameRules: []string{
		"Hyphen-case identifier (e.g., 'data-analyzer')",
		"Lowercase letters, digits, and hyphens only",
		"Max 40 characters",
		"Must match directory name exactly",
	},
	UpdateStart:        "Starting skills update process",
	UpdatePhaseCheck:   "Phase 1: Checking for updates...",
	UpdatePhaseUpdate:  "Phase 2: Updating skills...",
	UpdateNone:         "No updates available.",
	UpdateFound:        "Found %d skill(s) with updates:",
	UpdateForceHint:    "Use --force to proceed with updates",
	UpdateSummary:      "Update Summary",
	UpdateTotalChecked: "Total skills checked: %d",
	UpdateAvailable:    "Updates available: %d",
	UpdateSucceeded:    "Successfully updated: %d",
	UpdateFailed:       "Failed to update: %d",
	AuditPassed:        "Skill passed all checks!",
	AuditWarned:        "Audit completed with warnings. Review the items above.",
	AuditFailed:        "Audit completed with errors. Please fix issues above.",
	BrowserHint:        "Ensure Chrome, Edge, or Chromium is installed, or set ROD_BROWSER_BIN",
	PandocHint:         "Install pandoc (https://pandoc.org/installing.html), e.g. brew install pandoc",
}

// DefaultMessages uses unicode icons.
var DefaultMessages = withIcons(Icons{
	Pass:   "✓",
	Fail:   "✗",
	Warn:   "⚠",
	Info:   "•",
	Update: "↑",
})

// ASCIIMessages uses bracketed plain-text icons for terminals without
// unicode support.
var ASCIIMessages = withIcons(Icons{
	Pass:   "[OK]",
	Fail:   "[X]",
	Warn:   "[!]",
	Info:   "[*]",
	Update: "[UPDATE]",
})

func withIcons(icons Icons) Messages {
	m := sharedMessages
	m.Icons = icons
	return m
}

// SelectMessages returns the ASCII table when ascii is set, DefaultMessages otherwise.
func SelectMessages(ascii bool) Messages {
	if ascii {
		return ASCIIMessages
	}
	return DefaultMessages
}
