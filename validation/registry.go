package validation

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed registry.json
var registryFS embed.FS

// implKey is the (code, format) lookup key; format == "" denotes a
// generic implementation shared across rule sets.
type implKey struct {
	code   string
	format RuleSet
}

// Impl is a rule implementation function: given a populated Context, it
// inspects the document and calls ctx.AddFinding for every violation it
// discovers.
type Impl func(ctx *Context)

// implRegistry is the process-wide table populated by each rules_*.go
// file's init() function.
var implRegistry = map[implKey]Impl{}

// Register associates an implementation with a rule code, optionally
// scoped to one rule set. format == "" registers a generic
// implementation used by both xml and csv rule sets. Register panics
// on a duplicate (code, format) registration — a startup error, since
// two rule files defining the same code/format pair is always a bug.
func Register(code string, format RuleSet, impl Impl) {
	key := implKey{code: code, format: format}
	if _, dup := implRegistry[key]; dup {
		panic(fmt.Sprintf("validation: duplicate rule implementation for (%s, %q)", code, format))
	}
	implRegistry[key] = impl
}

// lookupImpl resolves the implementation for a rule under a given rule
// set: format-specific registration first, generic second.
func lookupImpl(code string, ruleSet RuleSet) (Impl, bool) {
	if impl, ok := implRegistry[implKey{code: code, format: ruleSet}]; ok {
		return impl, true
	}
	impl, ok := implRegistry[implKey{code: code, format: ""}]
	return impl, ok
}

// LoadRegistry parses the embedded registry.json into an ordered slice
// of rule definitions; order is execution order and must be preserved.
func LoadRegistry() ([]*RuleDefinition, error) {
	data, err := registryFS.ReadFile("registry.json")
	if err != nil {
		return nil, fmt.Errorf("validation: reading embedded registry.json: %w", err)
	}
	var defs []*RuleDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("validation: parsing registry.json: %w", err)
	}
	return defs, nil
}
