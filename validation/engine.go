package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/speedata/xbridge"
)

// formatByExtension maps a file extension to the rule set it selects.
var formatByExtension = map[string]RuleSet{
	".xbrl": RuleSetXML,
	".xml":  RuleSetXML,
	".zip":  RuleSetCSV,
}

// DetectFormat determines a file's rule set from its extension
// (case-insensitive).
func DetectFormat(path string) (RuleSet, error) {
	ext := strings.ToLower(filepath.Ext(path))
	rs, ok := formatByExtension[ext]
	if !ok {
		return "", fmt.Errorf("validation: unsupported file extension %q, expected .xbrl, .xml or .zip", ext)
	}
	return rs, nil
}

// SelectRules filters the registry by rule set (format filter), EBA
// gate, and post-conversion filter, preserving catalog order.
func SelectRules(registry []*RuleDefinition, ruleSet RuleSet, eba, postConversion bool) []*RuleDefinition {
	var selected []*RuleDefinition
	for _, rule := range registry {
		if ruleSet == RuleSetXML && !rule.XML {
			continue
		}
		if ruleSet == RuleSetCSV && !rule.CSV {
			continue
		}
		if rule.EBA && !eba {
			continue
		}
		if ruleSet == RuleSetCSV && postConversion && !rule.PostConversion {
			continue
		}
		selected = append(selected, rule)
	}
	return selected
}

// RunOptions controls one validation run.
type RunOptions struct {
	EBA            bool
	PostConversion bool
	// ModuleDir is the taxonomy module catalog directory, consulted by
	// rules that check a schemaRef or filing indicator against known
	// entry points.
	ModuleDir string
}

// RunValidation is the main execution loop: detect format, load the
// registry, select applicable rules, attempt parsing, and run each
// selected rule's implementation, recovering a panicking rule into a
// synthetic INFO finding. ctx is checked between rules for cooperative
// cancellation, since a large catalog run against a large document is
// the validation side's equivalent blocking point to Convert's file/zip
// I/O.
func RunValidation(ctx context.Context, path string, opts RunOptions) ([]Finding, error) {
	ruleSet, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validation: reading %s: %w", path, err)
	}

	registry, err := LoadRegistry()
	if err != nil {
		return nil, err
	}
	selected := SelectRules(registry, ruleSet, opts.EBA, opts.PostConversion)

	var root *etree.Element
	if ruleSet == RuleSetXML {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(rawBytes); err == nil {
			root = doc.Root()
		}
	}

	module := tryLoadModule(root, opts.ModuleDir)
	scans := buildScans(root)

	var all []Finding
	for _, rule := range selected {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}

		impl, ok := lookupImpl(rule.Code, ruleSet)
		if !ok {
			continue
		}

		ruleCtx := &Context{
			RuleSet:   ruleSet,
			Rule:      rule,
			FilePath:  path,
			RawBytes:  rawBytes,
			XMLRoot:   root,
			ModuleDir: opts.ModuleDir,
			Module:    module,
			Scans:     scans,
		}

		runRuleRecovered(impl, ruleCtx)
		all = append(all, ruleCtx.findings...)
	}

	return all, nil
}

// tryLoadModule resolves the taxonomy module referenced by root's
// link:schemaRef href, returning nil if there is no root, no
// schemaRef, no module directory configured, or the module cannot be
// loaded — rules that need a module degrade gracefully when it is
// unavailable rather than failing the whole run.
func tryLoadModule(root *etree.Element, moduleDir string) *xbridge.Module {
	if root == nil || moduleDir == "" {
		return nil
	}
	refs := childrenNamed(root, "schemaRef")
	if len(refs) != 1 {
		return nil
	}
	href := refs[0].SelectAttrValue("href", "")
	if href == "" {
		return nil
	}
	mod, err := xbridge.NewModuleCatalog(moduleDir).Load(href)
	if err != nil || mod == nil {
		return nil
	}
	return mod
}

// runRuleRecovered invokes impl, converting a panic into a synthetic
// INFO finding that names the offending rule.
func runRuleRecovered(impl Impl, ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			ctx.findings = append(ctx.findings, Finding{
				RuleCode: ctx.Rule.Code,
				Severity: SeverityInfo,
				RuleSet:  ctx.RuleSet,
				Message:  fmt.Sprintf("rule implementation panicked: %v", r),
				Location: ctx.FilePath,
			})
		}
	}()
	impl(ctx)
}
