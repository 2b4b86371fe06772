package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/lxsync/internal/reconcile"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// failureDocument is the structured failure result: the message plus every
// piece of progress accumulated before the failing step.
type failureDocument struct {
	Msg     string         `json:"msg"`
	Changed bool           `json:"changed"`
	Actions []string       `json:"actions"`
	Diff    reconcile.Diff `json:"diff"`
}

func renderResult(w io.Writer, result reconcile.Result, dryRun, asJSON bool) error {
	if asJSON {
		return writeJSON(w, result)
	}

	title := fmt.Sprintf("%s → %s", result.OldState, result.Diff.After.State)
	if dryRun {
		title += " (dry-run)"
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	if result.Changed {
		fmt.Fprintln(w, changedStyle.Render("changed: yes"))
		fmt.Fprintln(w, "actions: "+strings.Join(result.Actions, ", "))
	} else {
		fmt.Fprintln(w, unchangedStyle.Render("changed: no"))
	}

	for device, ips := range result.Addresses {
		fmt.Fprintf(w, "%s: %s\n", device, strings.Join(ips, ", "))
	}

	fmt.Fprintln(w, dimStyle.Render("run: "+result.RunID))
	return nil
}

func renderFailure(w io.Writer, result reconcile.Result, runErr error, asJSON bool) error {
	if asJSON {
		return writeJSON(w, failureDocument{
			Msg:     runErr.Error(),
			Changed: result.Changed,
			Actions: result.Actions,
			Diff:    result.Diff,
		})
	}

	fmt.Fprintln(w, failureStyle.Render("failed: "+runErr.Error()))
	if len(result.Actions) > 0 {
		fmt.Fprintln(w, "completed actions: "+strings.Join(result.Actions, ", "))
	}
	fmt.Fprintln(w, dimStyle.Render("run: "+result.RunID))
	return nil
}

func writeJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
