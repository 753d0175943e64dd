package main

import (
	"fmt"
	"strings"

	"github.com/use-agent/aeoaudit/models"
)

func errorMessage(fallback string, e *models.ErrorDetail) string {
	if e == nil {
		return fallback
	}
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Retryable {
		msg += " (retryable)"
	}
	return msg
}

// formatReport renders a report as plain text for an assistant to read.
func formatReport(r *models.TransformedReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "AEO audit: %s\n", r.Meta.URL)
	fmt.Fprintf(&sb, "Overall score: %.0f/100\n\n", r.Scores.Overall)

	sb.WriteString("Category scores:\n")
	for _, c := range models.Categories {
		fmt.Fprintf(&sb, "  %-26s %3.0f\n", c.Label(), r.Scores.Categories[c])
	}

	if len(r.Prioritized.Highlights) > 0 {
		sb.WriteString("\nNeeds attention: " + strings.Join(r.Prioritized.Highlights, ", ") + "\n")
	}

	if len(r.Prioritized.Fixes) > 0 {
		sb.WriteString("\nTop fixes:\n")
		for i, f := range r.Prioritized.Fixes {
			fmt.Fprintf(&sb, "%d. %s [%s impact, %s effort, priority %.2f]\n", i+1, f.Title, f.Impact, f.Effort, f.Priority)
			if f.Why != "" {
				fmt.Fprintf(&sb, "   Why: %s\n", f.Why)
			}
			if f.How != "" && f.How != f.Title {
				fmt.Fprintf(&sb, "   How: %s\n", f.How)
			}
		}
	}

	if len(r.Prioritized.QuickWins) > 0 {
		sb.WriteString("\nQuick wins:\n")
		for _, w := range r.Prioritized.QuickWins {
			sb.WriteString("  - " + w + "\n")
		}
	}

	if len(r.Keywords) > 0 {
		sb.WriteString("\nKeywords: " + strings.Join(r.Keywords, ", ") + "\n")
	}
	return sb.String()
}
