package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/formgraph/form"
	"github.com/smallnest/formgraph/pipeline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	completeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	sectionStyle  = lipgloss.NewStyle().Underline(true)
)

// renderResponse formats a run for a terminal.
func renderResponse(resp *pipeline.Response) string {
	var b strings.Builder

	status := completeStyle.Render(string(resp.Status))
	if resp.Status != pipeline.StatusComplete {
		status = pendingStyle.Render(string(resp.Status))
	}
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Status:"), status)
	fmt.Fprintf(&b, "%s %.2f  %s %.0f%%\n",
		labelStyle.Render("confidence"), resp.Result.ConfidenceScore,
		labelStyle.Render("completion"), resp.Result.CompletionPercentage*100)

	if len(resp.Result.FilledFields) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Filled") + "\n")
		ids := make([]string, 0, len(resp.Result.FilledFields))
		for id := range resp.Result.FilledFields {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(id+":"), resp.Result.FilledFields[id])
		}
	}

	renderList(&b, "Missing", resp.Result.MissingInformation)
	if len(resp.Result.ValidationErrors) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Errors") + "\n")
		for _, ve := range resp.Result.ValidationErrors {
			fmt.Fprintf(&b, "  %s %s\n", errorStyle.Render(ve.FieldID+":"), ve.Message)
		}
	}
	renderList(&b, "Questions", resp.Result.QuestionsForUser)
	renderList(&b, "Suggestions", resp.Result.Suggestions)

	fmt.Fprintf(&b, "\n%s", resp.NextAction)
	return b.String()
}

func renderList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + sectionStyle.Render(title) + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func formatError(err error) string {
	msg := errorStyle.Render("Error: " + err.Error())
	var reqErr *form.RequestError
	if errors.As(err, &reqErr) && len(reqErr.Problems) > 1 {
		details := labelStyle.Italic(true).Render(strings.Join(reqErr.Problems, "\n"))
		return msg + "\n" + details
	}
	return msg
}
