package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jmcampanini/awr/internal/aws"
	"github.com/jmcampanini/awr/internal/catalog"
	"github.com/jmcampanini/awr/internal/command"
	"github.com/jmcampanini/awr/internal/freshness"
)

var (
	purple    = lipgloss.Color("99")
	gray      = lipgloss.Color("245")
	lightGray = lipgloss.Color("241")
	red       = lipgloss.Color("196")
	green     = lipgloss.Color("42")
	amber     = lipgloss.Color("214")

	headingStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lightGray).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(gray)
)

const rule = "─"

func heading(sb *strings.Builder, title string, f catalog.Freshness) {
	sb.WriteString(headingStyle.Render(title))
	sb.WriteString("  ")
	sb.WriteString(mutedStyle.Render("(" + f.String() + ")"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(rule, 29))
	sb.WriteString("\n")
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle := cellStyle.Foreground(gray)
	evenRowStyle := cellStyle.Foreground(lightGray)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...)
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "Succeeded":
		return lipgloss.NewStyle().Foreground(green)
	case "Failed", "Stopped", "Cancelled":
		return lipgloss.NewStyle().Foreground(red)
	case aws.ActionStatusInProgress:
		return lipgloss.NewStyle().Foreground(amber)
	default:
		return lipgloss.NewStyle()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderRepository renders repository metadata and the open pull request table.
func renderRepository(info catalog.Result[aws.RepositoryInfo], prs catalog.PullRequestList, now time.Time) string {
	var sb strings.Builder
	repo := info.Value

	heading(&sb, "Repository "+repo.Name, info.Freshness)
	if repo.Description != "" {
		sb.WriteString(repo.Description + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Default branch:"), orDash(repo.DefaultBranch)))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Last modified: "), freshness.Since(repo.LastModified, now)))
	if repo.CloneURLSSH != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Clone (ssh):   "), repo.CloneURLSSH))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Open pull requests (%d)  %s\n", len(prs.Items), mutedStyle.Render("("+prs.IDs.String()+")")))
	if len(prs.Items) == 0 {
		sb.WriteString(mutedStyle.Render("No open pull requests.") + "\n")
	} else {
		rows := make([][]string, len(prs.Items))
		for i, item := range prs.Items {
			pr := item.Value
			branch := ""
			if target, ok := pr.Target(); ok {
				branch = target.SourceBranch() + " -> " + target.DestinationBranch()
			}
			rows[i] = []string{
				pr.ID,
				truncateString(pr.Title, 40),
				pr.Author(),
				truncateString(branch, 40),
				freshness.Since(pr.LastActivity, now),
			}
		}
		sb.WriteString(newTable("#", "Title", "Author", "Branch", "Activity").Rows(rows...).String())
		sb.WriteString("\n")
	}
	for _, err := range prs.Errors {
		sb.WriteString(errorStyle.Render("! "+err.Error()) + "\n")
	}
	return sb.String()
}

// renderPullRequest renders one pull request with its ready-to-paste commands.
func renderPullRequest(res catalog.Result[aws.PullRequest], bundle command.Bundle, now time.Time) string {
	var sb strings.Builder
	pr := res.Value

	heading(&sb, "PR #"+pr.ID, res.Freshness)
	sb.WriteString(fmt.Sprintf("Title:    %s\n", pr.Title))
	sb.WriteString(fmt.Sprintf("Author:   %s\n", orDash(pr.Author())))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", strings.ToLower(string(pr.Status))))
	sb.WriteString(fmt.Sprintf("Revision: %s\n", orDash(pr.RevisionID)))
	sb.WriteString(fmt.Sprintf("Activity: %s\n", freshness.Since(pr.LastActivity, now)))
	for _, t := range pr.Targets {
		sb.WriteString(fmt.Sprintf("Target:   %s: %s -> %s\n", t.RepositoryName, t.SourceBranch(), t.DestinationBranch()))
	}
	for _, r := range pr.ApprovalRules {
		sb.WriteString(fmt.Sprintf("Rule:     %s\n", r.Name))
	}

	if strings.TrimSpace(pr.Description) != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(pr.Description))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	renderCommands(&sb, bundle)
	return sb.String()
}

func renderCommands(sb *strings.Builder, bundle command.Bundle) {
	if !bundle.IsEmpty() {
		sb.WriteString(headingStyle.Render("Commands") + "\n")
		for _, c := range bundle.Commands {
			sb.WriteString(mutedStyle.Render("# "+c.Label) + "\n")
			sb.WriteString(c.String() + "\n")
		}
	}
	for _, skip := range bundle.Skipped {
		sb.WriteString(mutedStyle.Render("("+skip.Error()+")") + "\n")
	}
}

// renderPipeline renders stage and action state, pending approvals with
// their commands, and recent executions.
func renderPipeline(st catalog.Result[aws.PipelineState], execs *catalog.Result[aws.PipelineExecutions], execErr error, bundle command.Bundle, now time.Time) string {
	var sb strings.Builder
	p := st.Value

	heading(&sb, "Pipeline "+p.Name, st.Freshness)

	var rows [][]string
	for _, stage := range p.Stages {
		stageName := stage.Name
		if !stage.InboundEnabled {
			stageName += " (disabled)"
		}
		if len(stage.Actions) == 0 {
			rows = append(rows, []string{stageName, "-", statusStyle(stage.Status).Render(orDash(stage.Status)), "", ""})
			continue
		}
		for i, action := range stage.Actions {
			name := ""
			if i == 0 {
				name = stageName
			}
			status := orDash(action.Status)
			if action.IsPendingApproval() {
				status = "Awaiting approval"
			}
			rows = append(rows, []string{
				name,
				action.Name,
				statusStyle(action.Status).Render(status),
				freshness.Since(action.LastStatusChange, now),
				truncateString(action.Summary, 40),
			})
		}
	}
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("No stages reported.") + "\n")
	} else {
		sb.WriteString(newTable("Stage", "Action", "Status", "Changed", "Summary").Rows(rows...).String())
		sb.WriteString("\n")
	}

	pending := p.PendingApprovals()
	sb.WriteString("\n")
	if len(pending) == 0 {
		sb.WriteString(mutedStyle.Render("No pending approvals.") + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("Pending approvals (%d)\n", len(pending)))
		for _, a := range pending {
			sb.WriteString(fmt.Sprintf("  %s / %s, waiting %s\n", a.Stage, a.Action, strings.TrimSuffix(freshness.Since(a.Since, now), " ago")))
		}
		sb.WriteString("\n")
		renderCommands(&sb, bundle)
	}

	sb.WriteString("\n")
	switch {
	case execErr != nil:
		sb.WriteString(errorStyle.Render("! executions unavailable: "+execErr.Error()) + "\n")
	case execs == nil || len(execs.Value.Executions) == 0:
		sb.WriteString(mutedStyle.Render("No recent executions.") + "\n")
	default:
		sb.WriteString(fmt.Sprintf("Recent executions  %s\n", mutedStyle.Render("("+execs.Freshness.String()+")")))
		rows := make([][]string, len(execs.Value.Executions))
		for i, e := range execs.Value.Executions {
			revision := ""
			if len(e.SourceRevisions) > 0 {
				revision = e.SourceRevisions[0].Summary
				if revision == "" {
					revision = e.SourceRevisions[0].RevisionID
				}
			}
			rows[i] = []string{
				e.ID,
				statusStyle(e.Status).Render(orDash(e.Status)),
				freshness.Since(e.StartedAt, now),
				orDash(e.Trigger),
				truncateString(firstLine(revision), 40),
			}
		}
		sb.WriteString(newTable("Execution", "Status", "Started", "Trigger", "Revision").Rows(rows...).String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
