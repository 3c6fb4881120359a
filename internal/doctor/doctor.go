package doctor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// Issue classifies a consistency finding.
type Issue int

const (
	// DanglingParent is a folder whose ParentID points at no folder.
	// Deleting a folder orphans its children instead of cascading.
	DanglingParent Issue = iota
	// MissingFolder is a conversation filed into a folder that no
	// longer exists.
	MissingFolder
	// Unfiled is a conversation entry whose folder was cleared (soft
	// delete leaves the entry behind).
	Unfiled
	// PlaceholderTitle is a filed conversation whose title never
	// resolved past the placeholder.
	PlaceholderTitle
)

// Finding is one reported inconsistency.
type Finding struct {
	Issue          Issue
	FolderID       string
	ConversationID string
	Detail         string
}

// Report summarizes a consistency check. Checks never mutate state; the
// findings are accepted debt to surface, not errors to repair.
type Report struct {
	Folders       int
	Conversations int
	Findings      []Finding
}

// Healthy reports whether the check found nothing.
func (r Report) Healthy() bool {
	return len(r.Findings) == 0
}

// Check inspects the folder tree and conversation map for inconsistencies.
func Check(folders []model.Folder, conversations model.ConversationMap) Report {
	report := Report{
		Folders:       len(folders),
		Conversations: len(conversations),
	}

	byID := map[string]model.Folder{}
	for _, f := range folders {
		byID[f.ID] = f
	}

	for _, f := range folders {
		if f.ParentID == nil {
			continue
		}
		if _, ok := byID[*f.ParentID]; !ok {
			report.Findings = append(report.Findings, Finding{
				Issue:    DanglingParent,
				FolderID: f.ID,
				Detail:   fmt.Sprintf("folder %q parent %s does not exist", f.Name, *f.ParentID),
			})
		}
	}

	ids := make([]string, 0, len(conversations))
	for id := range conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := conversations[id]
		if c.FolderID == nil {
			report.Findings = append(report.Findings, Finding{
				Issue:          Unfiled,
				ConversationID: id,
				Detail:         fmt.Sprintf("conversation %q is filed nowhere", model.DisplayTitle(c.Title)),
			})
			continue
		}
		if _, ok := byID[*c.FolderID]; !ok {
			report.Findings = append(report.Findings, Finding{
				Issue:          MissingFolder,
				ConversationID: id,
				FolderID:       *c.FolderID,
				Detail:         fmt.Sprintf("conversation %q filed into missing folder %s", model.DisplayTitle(c.Title), *c.FolderID),
			})
		}
		if _, ok := model.SanitizeTitle(c.Title); !ok {
			report.Findings = append(report.Findings, Finding{
				Issue:          PlaceholderTitle,
				ConversationID: id,
				Detail:         "conversation title never resolved",
			})
		}
	}

	return report
}

// String renders the report for the CLI.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d folders, %d conversations\n", r.Folders, r.Conversations)
	if r.Healthy() {
		b.WriteString("no issues found\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d issue(s):\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  [%s] %s\n", issueName(f.Issue), f.Detail)
	}
	return b.String()
}

func issueName(issue Issue) string {
	switch issue {
	case DanglingParent:
		return "dangling-parent"
	case MissingFolder:
		return "missing-folder"
	case Unfiled:
		return "unfiled"
	case PlaceholderTitle:
		return "placeholder-title"
	default:
		return "unknown"
	}
}
