// Package mcp provides Markdown formatting for MCP tool responses and the
// unified task workflow tool. Output is token-efficient Markdown suitable for
// LLM consumption.
package mcp

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const timeLayout = "2006-01-02 15:04"

// FormatTask converts a single task into concise Markdown.
func FormatTask(t *models.Task) string {
	if t == nil {
		return "No task information."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s %s\n", statusIcon(t.Status), t.Name))
	sb.WriteString(fmt.Sprintf("**ID**: `%s` | **Status**: %s\n", t.ID, statusLabel(t.Status)))
	sb.WriteString(fmt.Sprintf("**Created**: %s | **Updated**: %s", t.CreatedAt.Format(timeLayout), t.UpdatedAt.Format(timeLayout)))
	if t.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf(" | **Completed**: %s", t.CompletedAt.Format(timeLayout)))
	}
	sb.WriteString("\n\n")

	if t.Description != "" {
		sb.WriteString(t.Description)
		sb.WriteString("\n\n")
	}

	if len(t.Dependencies) > 0 {
		sb.WriteString("### Dependencies\n")
		for _, dep := range t.Dependencies {
			sb.WriteString(fmt.Sprintf("- `%s`\n", dep))
		}
		sb.WriteString("\n")
	}

	if t.Notes != "" {
		sb.WriteString("### Notes\n")
		sb.WriteString(t.Notes)
		sb.WriteString("\n\n")
	}

	if t.ImplementationGuide != "" {
		sb.WriteString("### Implementation Guide\n")
		sb.WriteString(t.ImplementationGuide)
		sb.WriteString("\n\n")
	}

	// Verification as checklist
	if t.VerificationCriteria != "" {
		sb.WriteString("### Verification\n")
		checkbox := "[ ]"
		if t.IsCompleted() {
			checkbox = "[x]"
		}
		for _, line := range strings.Split(t.VerificationCriteria, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(line, "-* "))
			if line != "" {
				sb.WriteString(fmt.Sprintf("- %s %s\n", checkbox, line))
			}
		}
		sb.WriteString("\n")
	}

	if len(t.RelatedFiles) > 0 {
		sb.WriteString("### Related Files\n")
		for _, f := range t.RelatedFiles {
			sb.WriteString(fmt.Sprintf("- `%s` (%s)", f.Path, f.Type))
			if f.LineStart > 0 {
				sb.WriteString(fmt.Sprintf(" L%d", f.LineStart))
				if f.LineEnd > f.LineStart {
					sb.WriteString(fmt.Sprintf("-%d", f.LineEnd))
				}
			}
			if f.Description != "" {
				sb.WriteString(" - " + f.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if t.Agent != "" {
		sb.WriteString(fmt.Sprintf("**Agent**: %s\n\n", t.Agent))
	}

	if t.Summary != "" {
		sb.WriteString("### Summary\n")
		sb.WriteString(t.Summary)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}

// FormatResult converts a mutation result into Markdown. Refusals list their blockers.
func FormatResult(result task.Result) string {
	if !result.Success {
		var sb strings.Builder
		title := "Not Found"
		if result.Reason == task.ReasonForbidden {
			title = "Not Allowed"
		}
		sb.WriteString(fmt.Sprintf("## ❌ %s\n\n", title))
		sb.WriteString(result.Message)
		if len(result.Blockers) > 0 {
			sb.WriteString("\n\n### Blocked By\n")
			for _, b := range result.Blockers {
				sb.WriteString(fmt.Sprintf("- **%s** (`%s`)\n", b.Name, b.ID))
			}
		}
		return strings.TrimSpace(sb.String())
	}

	if result.Task == nil {
		return result.Message
	}
	return result.Message + "\n\n" + FormatTask(result.Task)
}

// FormatTaskList renders tasks as a compact numbered list.
func FormatTaskList(tasks []models.Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}

	var sb strings.Builder
	completed := 0
	for _, t := range tasks {
		if t.IsCompleted() {
			completed++
		}
	}
	sb.WriteString(fmt.Sprintf("## Tasks (%d/%d completed)\n", completed, len(tasks)))
	for i, t := range tasks {
		sb.WriteString(fmt.Sprintf("%d. %s **%s** `%s`", i+1, statusIcon(t.Status), t.Name, t.ID))
		if len(t.Dependencies) > 0 {
			sb.WriteString(fmt.Sprintf(" (deps: %d)", len(t.Dependencies)))
		}
		sb.WriteString("\n")
		if t.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", truncate(t.Description, 100)))
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatSearch renders one page of search results.
func FormatSearch(query string, result task.SearchResult) string {
	p := result.Pagination
	if len(result.Hits) == 0 {
		return fmt.Sprintf("No tasks match %q.", query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search: %s\n", query))
	sb.WriteString(fmt.Sprintf("Page %d of %d (%d results)\n\n", p.CurrentPage, p.TotalPages, p.TotalResults))
	for i, h := range result.Hits {
		n := (p.CurrentPage-1)*p.PageSize + i + 1
		sb.WriteString(fmt.Sprintf("%d. %s **%s** `%s`", n, statusIcon(h.Status), h.Name, h.ID))
		if h.Archived {
			sb.WriteString(" (archived)")
		}
		sb.WriteString("\n")
		if h.Summary != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", truncate(h.Summary, 120)))
		} else if h.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", truncate(h.Description, 120)))
		}
	}
	if p.HasMore {
		sb.WriteString(fmt.Sprintf("\n> **Hint**: request page %d for more results.\n", p.CurrentPage+1))
	}
	return strings.TrimSpace(sb.String())
}

// FormatBatch renders the outcome of a batch merge.
func FormatBatch(mode task.Mode, result task.BatchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## ✅ Merged %d task(s) (%s)\n\n", len(result.Tasks), mode))
	for i, t := range result.Tasks {
		sb.WriteString(fmt.Sprintf("%d. **%s** `%s`", i+1, t.Name, t.ID))
		if len(t.Dependencies) > 0 {
			sb.WriteString(fmt.Sprintf(" (deps: %d)", len(t.Dependencies)))
		}
		sb.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("\n### ⚠️ Dropped Dependencies\n")
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("- **%s**: `%s` (%s)\n", w.TaskName, w.Token, w.Reason))
		}
	}

	if result.ArchivePath != "" {
		sb.WriteString(fmt.Sprintf("\nCompleted tasks archived to `%s`\n", result.ArchivePath))
	}
	return strings.TrimSpace(sb.String())
}

// FormatClear renders the outcome of clearing the collection.
func FormatClear(result task.ClearResult) string {
	if result.Removed == 0 {
		return "No tasks to clear."
	}
	msg := fmt.Sprintf("Removed %d task(s).", result.Removed)
	if result.ArchivePath != "" {
		msg += fmt.Sprintf(" Archived %d completed task(s) to `%s`.", result.Archived, result.ArchivePath)
	}
	return msg
}

// FormatAssessment renders a complexity assessment.
func FormatAssessment(a *task.Assessment) string {
	if a == nil {
		return "No assessment available."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Complexity: %s\n", a.TaskName))
	sb.WriteString(fmt.Sprintf("**ID**: `%s` | **Level**: %s\n\n", a.TaskID, levelLabel(a.Level)))
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Description length | %d |\n", a.Metrics.DescriptionLength))
	sb.WriteString(fmt.Sprintf("| Dependencies | %d |\n", a.Metrics.DependencyCount))
	sb.WriteString(fmt.Sprintf("| Notes length | %d |\n\n", a.Metrics.NotesLength))

	if len(a.Recommendations) > 0 {
		sb.WriteString("### Recommendations\n")
		for _, r := range a.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", r))
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatCheck renders an executability check. names maps ids to task names where known.
func FormatCheck(id string, check task.ExecutionCheck, names map[string]string) string {
	if check.CanExecute {
		return fmt.Sprintf("✅ Task `%s` can be executed.", id)
	}
	if len(check.BlockedBy) == 0 {
		return fmt.Sprintf("❌ Task `%s` cannot be executed: it is missing or already completed.", id)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏳ Task `%s` is blocked by:\n", id))
	for _, dep := range check.BlockedBy {
		if name, ok := names[dep]; ok {
			sb.WriteString(fmt.Sprintf("- **%s** (`%s`)\n", name, dep))
		} else {
			sb.WriteString(fmt.Sprintf("- `%s` (unknown task)\n", dep))
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatError returns a Markdown-formatted error message.
func FormatError(message string) string {
	return fmt.Sprintf("## ❌ Error\n\n**Details**: %s", message)
}

// FormatValidationError returns a Markdown error for validation failures.
func FormatValidationError(field, message string) string {
	return fmt.Sprintf("## ❌ Validation Error\n\n**Field**: `%s`\n**Details**: %s", field, message)
}

// === Helper Functions ===

// statusIcon returns an emoji for task status
func statusIcon(status models.TaskStatus) string {
	switch status {
	case models.StatusPending:
		return "⏳"
	case models.StatusInProgress:
		return "🔄"
	case models.StatusCompleted:
		return "✅"
	default:
		return "📋"
	}
}

// statusLabel turns in_progress into "In Progress".
func statusLabel(status models.TaskStatus) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "_", " "))
}

func levelLabel(l task.Level) string {
	return cases.Title(language.English).String(strings.ReplaceAll(l.String(), "_", " "))
}

// truncate shortens a string to maxLen and adds ellipsis
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
