package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/codenav/navcore/internal/patch/parser"
	"go.starlark.net/starlark"
)

// scriptVersion is the only AstScript catalog version this planner
// understands; a script declaring any other version is rejected.
const scriptVersion = 1

// scriptStep is one unrolled step of an AstScript, equivalent to a
// single Ast Operation section.
type scriptStep struct {
	Path    string            `json:"path" toml:"path"`
	Op      string            `json:"op" toml:"op"`
	Options map[string]string `json:"options" toml:"options"`
	Payload []string          `json:"payload" toml:"payload"`
}

type scriptFile struct {
	Version int          `json:"version" toml:"version"`
	Steps   []scriptStep `json:"steps" toml:"steps"`
}

func (p *Planner) planAstScript(section parser.Section) (OperationSummary, FileEdit, bool) {
	steps, err := loadScript(filepath.Join(p.root, section.ScriptPath))
	if err != nil {
		return failure(ActionUpdate, section.ScriptPath, err.Error())
	}

	var lastSummary OperationSummary
	var lastEdit FileEdit
	var ok bool
	for _, step := range steps {
		synthetic := parser.Section{
			Kind:    parser.KindAstOperation,
			Path:    step.Path,
			Options: mergeOp(step.Options, step.Op),
			Payload: step.Payload,
		}
		lastSummary, lastEdit, ok = p.planAstOperation(synthetic)
		if !ok {
			return lastSummary, lastEdit, false
		}
	}
	if len(steps) == 0 {
		return failure(ActionUpdate, section.ScriptPath, "script has no steps")
	}
	return lastSummary, lastEdit, ok
}

func mergeOp(options map[string]string, op string) map[string]string {
	out := map[string]string{"op": op}
	for k, v := range options {
		out[k] = v
	}
	return out
}

// loadScript resolves format by extension (.toml/.json/.star),
// validates the declared catalog version, and returns the unrolled
// step sequence.
func loadScript(path string) ([]scriptStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ast script: %w", err)
	}

	var sf scriptFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parsing toml ast script: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parsing json ast script: %w", err)
		}
	case ".star":
		steps, err := loadStarlarkScript(path, data)
		if err != nil {
			return nil, err
		}
		sf.Version = scriptVersion
		sf.Steps = steps
	default:
		return nil, fmt.Errorf("unrecognized ast script format %q", ext)
	}

	if sf.Version != scriptVersion {
		return nil, fmt.Errorf("ast script %s declares version %d, catalog expects %d", path, sf.Version, scriptVersion)
	}
	_ = scriptHash(data) // computed but neither stored nor compared against an external catalog
	return sf.Steps, nil
}

func scriptHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// loadStarlarkScript executes a script() function that must return a
// list of step dicts with "path", "op", "options", "payload" keys.
func loadStarlarkScript(path string, data []byte) ([]scriptStep, error) {
	thread := &starlark.Thread{Name: "ast-script"}
	globals, err := starlark.ExecFile(thread, path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("executing starlark ast script: %w", err)
	}

	fn, ok := globals["script"].(*starlark.Function)
	if !ok {
		return nil, fmt.Errorf("starlark ast script %s must define script()", path)
	}
	result, err := starlark.Call(thread, fn, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("calling script(): %w", err)
	}

	list, ok := result.(*starlark.List)
	if !ok {
		return nil, fmt.Errorf("script() must return a list of steps")
	}

	var steps []scriptStep
	iter := list.Iterate()
	defer iter.Done()
	var item starlark.Value
	for iter.Next(&item) {
		step, err := starlarkToStep(item)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func starlarkToStep(v starlark.Value) (scriptStep, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return scriptStep{}, fmt.Errorf("each script() step must be a dict")
	}
	step := scriptStep{Options: map[string]string{}}
	if val, ok, _ := dict.Get(starlark.String("path")); ok {
		step.Path = starlarkString(val)
	}
	if val, ok, _ := dict.Get(starlark.String("op")); ok {
		step.Op = starlarkString(val)
	}
	if val, ok, _ := dict.Get(starlark.String("options")); ok {
		if optsDict, ok := val.(*starlark.Dict); ok {
			for _, item := range optsDict.Items() {
				step.Options[starlarkString(item[0])] = starlarkString(item[1])
			}
		}
	}
	if val, ok, _ := dict.Get(starlark.String("payload")); ok {
		if list, ok := val.(*starlark.List); ok {
			iter := list.Iterate()
			defer iter.Done()
			var item starlark.Value
			for iter.Next(&item) {
				step.Payload = append(step.Payload, starlarkString(item))
			}
		}
	}
	return step, nil
}

func starlarkString(v starlark.Value) string {
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	return v.String()
}
