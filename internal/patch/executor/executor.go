// Package executor implements the Patch Executor: it applies (or
// dry-runs) a planner.Plan atomically per file, runs per-language
// formatters and post-checks on the touched files, and emits a
// PatchReport plus, on failure, an amendment template the caller can
// re-apply after editing.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codenav/navcore/internal/patch/planner"
)

// Mode selects whether Execute mutates the filesystem.
type Mode string

const (
	ModeApply   Mode = "apply"
	ModeDryRun  Mode = "dry_run"
	postCheckTimeout = 30 * time.Second
)

// FormattingOutcome records one formatter invocation.
type FormattingOutcome struct {
	Tool       string `json:"tool"`
	Scope      string `json:"scope,omitempty"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Files      []string `json:"files"`
	Note       string `json:"note,omitempty"`
}

// PostCheckOutcome records one post-check command invocation.
type PostCheckOutcome struct {
	Tool       string   `json:"tool"`
	Scope      string   `json:"scope,omitempty"`
	Status     string   `json:"status"`
	DurationMs int64    `json:"duration_ms"`
	Files      []string `json:"files"`
	Note       string   `json:"note,omitempty"`
}

// PatchReport is the top-level result of a single apply_patch
// invocation, emitted as the trailing JSON line's "report" field.
type PatchReport struct {
	Status            string                        `json:"status"`
	Mode              Mode                          `json:"mode"`
	DurationMs        int64                         `json:"duration_ms"`
	Operations        []planner.OperationSummary    `json:"operations"`
	Errors            []string                      `json:"errors,omitempty"`
	Options           map[string]string             `json:"options,omitempty"`
	Formatting        []FormattingOutcome           `json:"formatting,omitempty"`
	PostChecks        []PostCheckOutcome            `json:"post_checks,omitempty"`
	Diagnostics       []string                      `json:"diagnostics,omitempty"`
	Batch             string                        `json:"batch,omitempty"`
	Artifacts         []string                      `json:"artifacts,omitempty"`
	AmendmentTemplate string                        `json:"amendment_template,omitempty"`
}

// LanguageRule tells PostChecks which manifest marks a language's
// workspace root and which command to run there.
type LanguageRule struct {
	Extension    string
	ManifestFile string
	Tool         string
	PerCrateArgs []string
	WorkspaceArgs []string
}

// Options configures a single Execute call.
type Options struct {
	Root      string
	Mode      Mode
	Formatter func(ctx context.Context, files []string) []FormattingOutcome
	Rules     []LanguageRule
}

// Execute applies plan's edits (or simulates them in dry_run mode),
// then runs formatters and post-checks over the touched files.
func Execute(ctx context.Context, opts Options, plan planner.Plan) PatchReport {
	start := time.Now()
	report := PatchReport{Mode: opts.Mode, Status: "success"}
	report.Operations = plan.Summaries

	var touched []string
	// The planner emits exactly one edit per non-failed summary, in
	// order, so edits are consumed positionally; several operations on
	// the same file each get their own (composed) edit.
	nextEdit := 0
	for i, summary := range plan.Summaries {
		if summary.Status == planner.StatusFailed {
			report.Status = "failed"
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", summary.Path, summary.Message))
			continue
		}
		if nextEdit >= len(plan.Edits) {
			continue
		}
		edit := &plan.Edits[nextEdit]
		nextEdit++
		if opts.Mode == ModeApply {
			if err := applyEdit(opts.Root, *edit); err != nil {
				plan.Summaries[i].Status = planner.StatusFailed
				plan.Summaries[i].Message = err.Error()
				report.Status = "failed"
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			plan.Summaries[i].Status = planner.StatusApplied
		}
		touched = append(touched, edit.Path)
	}
	report.Operations = plan.Summaries

	if opts.Mode == ModeApply && report.Status == "success" {
		if opts.Formatter != nil {
			report.Formatting = opts.Formatter(ctx, touched)
		}
		report.PostChecks = runPostChecks(ctx, opts.Root, opts.Rules, touched)
		for _, outcome := range report.PostChecks {
			if outcome.Status == "failed" {
				report.Status = "failed"
			}
		}
	}

	if report.Status == "failed" {
		report.AmendmentTemplate = buildAmendmentTemplate(plan)
	}

	report.DurationMs = time.Since(start).Milliseconds()
	return report
}

func findEdit(edits []planner.FileEdit, summary planner.OperationSummary) *planner.FileEdit {
	for i := range edits {
		if edits[i].Path == summary.Path || edits[i].RenameFrom == summary.Path {
			return &edits[i]
		}
	}
	return nil
}

// applyEdit writes (or deletes) a single file atomically: for a
// write, content lands in a sibling temp file which is then renamed
// over the destination so the workspace never observes a partial
// write.
func applyEdit(root string, edit planner.FileEdit) error {
	dest := filepath.Join(root, edit.Path)

	if edit.Delete {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting %s: %w", edit.Path, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", edit.Path, err)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, edit.NewContent, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", edit.Path, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming into place %s: %w", edit.Path, err)
	}

	if edit.RenameFrom != "" && edit.RenameFrom != edit.Path {
		if err := os.Remove(filepath.Join(root, edit.RenameFrom)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing moved-from file %s: %w", edit.RenameFrom, err)
		}
	}

	return nil
}

// runPostChecks groups touched files by LanguageRule, picks a
// per-crate or workspace-wide invocation by a simple size heuristic,
// and runs each rule's tool with a 30s timeout.
func runPostChecks(ctx context.Context, root string, rules []LanguageRule, touched []string) []PostCheckOutcome {
	var outcomes []PostCheckOutcome

	for _, rule := range rules {
		matched := filterByExtension(touched, rule.Extension)
		if len(matched) == 0 {
			continue
		}

		if _, err := exec.LookPath(rule.Tool); err != nil {
			outcomes = append(outcomes, PostCheckOutcome{
				Tool: rule.Tool, Status: "skipped", Files: matched,
				Note: fmt.Sprintf("%s not found on PATH", rule.Tool),
			})
			continue
		}

		manifestDirs := manifestAncestors(root, matched, rule.ManifestFile)
		scope, args := "workspace", rule.WorkspaceArgs
		if len(manifestDirs) <= 2 {
			scope, args = "crate", rule.PerCrateArgs
		}

		outcomes = append(outcomes, runTool(ctx, root, rule.Tool, scope, args, matched))
	}

	return outcomes
}

func filterByExtension(files []string, ext string) []string {
	var out []string
	for _, f := range files {
		if strings.HasSuffix(f, ext) {
			out = append(out, f)
		}
	}
	return out
}

func manifestAncestors(root string, files []string, manifest string) []string {
	seen := map[string]bool{}
	for _, f := range files {
		dir := filepath.Dir(f)
		for {
			if _, err := os.Stat(filepath.Join(root, dir, manifest)); err == nil {
				seen[dir] = true
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

func runTool(ctx context.Context, root, tool, scope string, args, files []string) PostCheckOutcome {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, postCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, tool, args...)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start).Milliseconds()

	outcome := PostCheckOutcome{Tool: tool, Scope: scope, DurationMs: duration, Files: files}
	switch {
	case checkCtx.Err() == context.DeadlineExceeded:
		outcome.Status = "failed"
		outcome.Note = "post-check timed out after 30s"
	case err != nil:
		outcome.Status = "failed"
		outcome.Note = strings.TrimSpace(stderr.String())
	default:
		outcome.Status = "applied"
	}
	return outcome
}

// buildAmendmentTemplate wraps the failed operations' original
// sections in a fresh Begin/End envelope. When the plan recorded no
// failed section (e.g. only a post-check failed), the envelope is
// empty; the full set of sections is not included.
func buildAmendmentTemplate(plan planner.Plan) string {
	var b strings.Builder
	b.WriteString("*** Begin Patch\n")
	if len(plan.FailedSections) > 0 {
		for _, s := range plan.FailedSections {
			b.WriteString(s)
		}
	}
	b.WriteString("*** End Patch\n")
	return b.String()
}

// EmitTrailingLine writes the machine-readable "apply_patch/v2"
// trailing JSON line to w.
func EmitTrailingLine(w interface{ Write([]byte) (int, error) }, report PatchReport) error {
	payload := struct {
		Schema string      `json:"schema"`
		Report PatchReport `json:"report"`
	}{Schema: "apply_patch/v2", Report: report}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
