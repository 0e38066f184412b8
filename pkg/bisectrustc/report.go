package bisectrustc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Colorer is the terminal-coloring seam named in spec.md §1: the core
// depends on this interface, not directly on fatih/color, so tests can
// swap in a no-op implementation. colorReporter below is the concrete
// fatih/color-backed implementation used at runtime.
type Colorer interface {
	Error(string) string
	Bold(string) string
}

type colorReporter struct{}

func (colorReporter) Error(s string) string { return color.New(color.FgRed).Sprint(s) }
func (colorReporter) Bold(s string) string  { return color.New(color.Bold).Sprint(s) }

// DefaultColorer is the fatih/color-backed Colorer used outside of tests.
var DefaultColorer Colorer = colorReporter{}

// PrintError writes err to w prefixed with a bold red "ERROR:", the
// original tool's `"ERROR:".red().bold()` convention.
func PrintError(w io.Writer, c Colorer, err error) {
	fmt.Fprintf(w, "%s %s\n", c.Error(c.Bold("ERROR:")), err)
}

// PrintReport renders the final, machine-greppable bisection report
// (§4.7 "Reporting"): for a CI result, the two nightly dates, the two
// commit hashes, GitHub compare/commit links, a commit-range table, and
// the exact argument vector needed to reproduce the run. Grounded on the
// teacher's tablewriter-based report renderers in cmd/registry.go.
func PrintReport(w io.Writer, c Colorer, r *Result, args []string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Bold("==================== REGRESSION REPORT ===================="))

	found := r.Sequence[r.Found]
	fmt.Fprintf(w, "regression in: %s\n", c.Error(found.Spec.String()))

	if !r.NightlyFirstSuccess.IsZero() {
		fmt.Fprintf(w, "searched nightlies %s .. %s\n",
			r.NightlyFirstSuccess.Format("2006-01-02"), r.NightlyLastFailure.Format("2006-01-02"))
	}
	if r.CIStartSha != "" {
		fmt.Fprintf(w, "searched commits %s .. %s\n", shortSha(r.CIStartSha), shortSha(r.CIEndSha))
		fmt.Fprintf(w, "https://github.com/rust-lang/rust/compare/%s...%s\n", r.CIStartSha, r.CIEndSha)
		fmt.Fprintf(w, "regressed commit: https://github.com/rust-lang/rust/commit/%s\n", found.Spec.Commit())
	}

	if len(r.Sequence) > 1 {
		printCommitTable(w, r)
	}

	fmt.Fprintln(w, "reproduce with:")
	fmt.Fprintf(w, "    %s\n", reproduceCommand(args))
	fmt.Fprintln(w, c.Bold("============================================================"))
}

// printCommitTable renders the searched sequence as a table marking the
// found boundary, mirroring the teacher's generateRegistryTableReport.
func printCommitTable(w io.Writer, r *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Candidate", "Verdict"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetColumnSeparator(" ")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, tc := range r.Sequence {
		verdict := "baseline"
		if i >= r.Found {
			verdict = "regressed"
		}
		table.Append([]string{fmt.Sprintf("%d", i), tc.Spec.String(), verdict})
	}
	table.Render()
}

func shortSha(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}

// reproduceCommand echoes the process's own argument vector with the
// program name stripped, matching the original `print_final_report`'s use
// of `env::args_os()`.
func reproduceCommand(args []string) string {
	if len(args) == 0 {
		args = os.Args
	}
	if len(args) <= 1 {
		return "bisect-rustc"
	}
	return "bisect-rustc " + strings.Join(args[1:], " ")
}
