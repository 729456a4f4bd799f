// Command applypatch is the Symbol-Aware Patch Engine's front end: it
// reads a Begin-Patch envelope from stdin, plans and applies it against
// the current working directory, and prints a human-readable summary
// followed by a single trailing JSON line carrying the full report.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/codenav/navcore/internal/config"
	"github.com/codenav/navcore/internal/patch/executor"
	"github.com/codenav/navcore/internal/patch/parser"
	"github.com/codenav/navcore/internal/patch/planner"
)

const usage = `usage: applypatch [dry-run|explain|amend] < patch.txt

Reads a *** Begin Patch ... *** End Patch envelope from stdin.

  (no subcommand)  plan and apply the patch
  dry-run          plan the patch without touching the filesystem
  explain          print the planned operations without applying
  amend            alias for dry-run, intended for re-running an
                   amendment_template produced by a failed apply
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	mode := executor.ModeApply
	switch len(args) {
	case 0:
	case 1:
		switch args[0] {
		case "dry-run", "amend":
			mode = executor.ModeDryRun
		case "explain":
			mode = executor.ModeDryRun
		case "-h", "--help":
			fmt.Fprint(stdout, usage)
			return 0
		default:
			fmt.Fprintf(stderr, "applypatch: unknown subcommand %q\n\n%s", args[0], usage)
			return 2
		}
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}
	explainOnly := len(args) == 1 && args[0] == "explain"

	raw, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "applypatch: reading stdin: %v\n", err)
		return 2
	}

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "applypatch: %v\n", err)
		return 2
	}

	sections, err := parser.Parse(string(raw))
	if err != nil {
		fmt.Fprintf(stderr, "applypatch: malformed patch envelope: %v\n", err)
		return 2
	}

	plan, err := planner.New(root).Plan(sections)
	if err != nil {
		fmt.Fprintf(stderr, "applypatch: planning failed: %v\n", err)
		return 2
	}

	if explainOnly {
		for _, summary := range plan.Summaries {
			fmt.Fprintf(stdout, "%s %s (%s)\n", summary.Action, summary.Path, summary.Status)
		}
		return 0
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(stderr, "applypatch: loading configuration: %v\n", err)
		return 2
	}

	report := executor.Execute(context.Background(), executor.Options{
		Root:  root,
		Mode:  mode,
		Rules: languageRules(cfg),
	}, plan)

	printSummary(stdout, report)
	if err := executor.EmitTrailingLine(stdout, report); err != nil {
		fmt.Fprintf(stderr, "applypatch: emitting report: %v\n", err)
		return 2
	}

	if report.Status == "failed" {
		return 1
	}
	return 0
}

func languageRules(cfg *config.Config) []executor.LanguageRule {
	rules := make([]executor.LanguageRule, 0, len(cfg.PostCheck.Languages))
	for _, l := range cfg.PostCheck.Languages {
		rules = append(rules, executor.LanguageRule{
			Extension:     l.Extension,
			ManifestFile:  l.ManifestFile,
			Tool:          l.Tool,
			PerCrateArgs:  l.PerCrateArgs,
			WorkspaceArgs: l.WorkspaceArgs,
		})
	}
	return rules
}

func printSummary(w io.Writer, report executor.PatchReport) {
	fmt.Fprintf(w, "patch %s (%s) in %dms\n", report.Status, report.Mode, report.DurationMs)
	for _, op := range report.Operations {
		fmt.Fprintf(w, "  %-8s %-40s %s\n", op.Action, op.Path, op.Status)
		if op.Message != "" {
			fmt.Fprintf(w, "           %s\n", op.Message)
		}
	}
	for _, outcome := range report.Formatting {
		fmt.Fprintf(w, "  formatted %s (%s)\n", outcome.Tool, outcome.Status)
	}
	for _, outcome := range report.PostChecks {
		fmt.Fprintf(w, "  checked   %s (%s)\n", outcome.Tool, outcome.Status)
	}
	if report.AmendmentTemplate != "" {
		fmt.Fprintln(w, "\nan amendment_template for the failed operations is included in the trailing JSON line")
	}
}
