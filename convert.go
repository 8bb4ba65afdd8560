package xbridge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// ConvertOptions controls one conversion job.
type ConvertOptions struct {
	// ModuleDir is the taxonomy module catalog directory (component B).
	ModuleDir string
	// OutputDir is where the resulting ZIP package is written.
	OutputDir string
	// StrictFilingIndicators fails the conversion on any orphaned fact
	// instead of reporting it as a warning.
	StrictFilingIndicators bool
}

// ConvertResult is everything a conversion job produced, for callers
// that want more than just the output path (e.g. tests).
type ConvertResult struct {
	OutputPath        string
	Instance          *Instance
	Module            *Module
	Resolved          *ResolveResult
	FilingIndicators  *FilingIndicatorReport
	Decimals          *DecimalsAggregator
	Warnings          []RecoverableWarning
}

// Convert runs the full pipeline — parse, load module, resolve,
// check filing indicators, aggregate decimals, write package — wiring
// components A through F together. ctx is checked
// between major stages for cooperative cancellation.
func Convert(ctx context.Context, inputPath string, opts ConvertOptions) (*ConvertResult, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, wrapIOErr("reading input file", err)
	}

	inst, err := ParseInstance(data)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var mod *Module
	if opts.ModuleDir != "" {
		catalog := NewModuleCatalog(opts.ModuleDir)
		mod, err = catalog.Load(inst.SchemaRef)
		if err != nil {
			return nil, err
		}
	}

	var res *ResolveResult
	if mod != nil {
		res, err = Resolve(inst, mod)
		if err != nil {
			return nil, err
		}
	} else {
		res = &ResolveResult{FactTables: map[int][]string{}}
		for i := range inst.Facts {
			res.Unmatched = append(res.Unmatched, &inst.Facts[i])
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	fiReport, err := CheckFilingIndicators(inst, res, opts.StrictFilingIndicators)
	if err != nil {
		return nil, err
	}

	agg := NewDecimalsAggregator()
	agg.AddAll(res.Cells)

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath, err := WritePackage(ctx, inst, res, agg, opts.OutputDir, stem)
	if err != nil {
		return nil, err
	}

	return &ConvertResult{
		OutputPath:       outputPath,
		Instance:         inst,
		Module:           mod,
		Resolved:         res,
		FilingIndicators: fiReport,
		Decimals:         agg,
		Warnings:         inst.Warnings,
	}, nil
}
