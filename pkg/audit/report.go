package audit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/presenter"
)

// Print writes a human-readable report. Details of passing checks are only
// shown when verbose is set.
func Print(p presenter.Presenter, r *Report, verbose bool) {
	msgs := p.Messages()
	p.Info(fmt.Sprintf("Auditing Skill: %s", r.Skill))
	p.Info(fmt.Sprintf("   Path: %s", r.Path))
	p.Info(fmt.Sprintf("   Level: %s", r.Level))
	p.Info("")

	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			p.Pass(res.Message)
			if !verbose {
				continue
			}
		case StatusWarning:
			p.Warn(res.Message)
		default:
			p.Fail(res.Message)
		}
		for _, d := range res.Details {
			p.Detail(d)
		}
	}

	p.Info("")
	p.Separator()
	switch r.Status {
	case StatusPass:
		p.Success(msgs.AuditPassed)
	case StatusWarning:
		p.Warning(msgs.AuditWarned)
	default:
		p.Error(errors.New(msgs.AuditFailed), "")
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "failed to encode audit report")
}
