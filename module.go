package xbridge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ParseClarkName parses the Clark-notation form "{uri}local" (or a bare
// "local" for the unqualified namespace) that serialised taxonomy
// modules use for member QNames. Modules are generated offline with no
// document nsmap to resolve a "prefix:local" string against, so they
// embed the resolved namespace URI directly instead.
func ParseClarkName(s string) QName {
	if strings.HasPrefix(s, "{") {
		if i := strings.IndexByte(s, '}'); i > 0 {
			return QName{Space: s[1:i], Local: s[i+1:]}
		}
	}
	return QName{Local: s}
}

// Architecture distinguishes the two table layouts a Module's tables can
// use.
type Architecture string

const (
	ArchitectureDatapoints Architecture = "datapoints"
	ArchitectureHeaders    Architecture = "headers"
)

// unitPlaceholder marks a dimension binding that should bind to the
// fact's context unit rather than to a fixed member.
type unitPlaceholder string

const (
	placeholderUnit        unitPlaceholder = "$unit"
	placeholderBaseCurrency unitPlaceholder = "$baseCurrency"
)

func isUnitPlaceholder(s string) bool {
	return s == string(placeholderUnit) || s == string(placeholderBaseCurrency)
}

// DatatypeMarker classifies a datapoint's numeric type for decimals
// aggregation bucketing.
type DatatypeMarker string

const (
	DatatypeMonetary   DatatypeMarker = "$decimalsMonetary"
	DatatypePercentage DatatypeMarker = "$decimalsPercentage"
	DatatypeInteger    DatatypeMarker = "$decimalsInteger"
	DatatypeDecimal    DatatypeMarker = "$decimalsDecimal"
)

// Cell is one Variable (datapoints architecture) or Column (headers
// architecture) entry — the two are structurally identical: each
// carries a datapoint ID, a set of dimension bindings, a datatype
// marker, and an optional allowed-value set.
type Cell struct {
	DatapointID string

	// Dimensions maps a dimension local-name to either a fixed expected
	// member QName, or a unit placeholder ("$unit"/"$baseCurrency")
	// meaning "bind the context's unit here".
	Dimensions map[string]string

	Datatype      DatatypeMarker
	AllowedValues map[QName]bool // optional; nil means unconstrained

	// HasUnitDim is true iff Dimensions contains a "unit" key bound to a
	// unit placeholder.
	HasUnitDim bool

	// IsBaseCurrencyDim is true iff the unit placeholder is
	// "$baseCurrency" rather than plain "$unit": the bound unit is also
	// the instance's reporting base currency, emitted as a
	// parameters.csv row.
	IsBaseCurrencyDim bool
}

func (c *Cell) unitDimensionName() (string, bool) {
	for dim, val := range c.Dimensions {
		if isUnitPlaceholder(val) {
			return dim, true
		}
	}
	return "", false
}

// fixedDimensions returns the subset of Dimensions that are NOT unit
// placeholders and are not in openKeys — the dimensions that must match
// a fixed member exactly.
func (c *Cell) fixedDimensions(openKeys map[string]bool) map[string]string {
	out := map[string]string{}
	for dim, val := range c.Dimensions {
		if isUnitPlaceholder(val) {
			continue
		}
		if openKeys[dim] {
			continue
		}
		out[dim] = val
	}
	return out
}

// Table is one taxonomy table.
type Table struct {
	Code                string
	FilingIndicatorCode string
	URL                 string
	Architecture        Architecture
	OpenKeys            map[string]bool
	AttributesHeader    []string // e.g. {"unit", "decimals"}

	// Variables is populated for ArchitectureDatapoints tables, Columns
	// for ArchitectureHeaders tables. Exactly one is non-empty.
	Variables []*Cell
	Columns   []*Cell
}

func (t *Table) cells() []*Cell {
	if t.Architecture == ArchitectureDatapoints {
		return t.Variables
	}
	return t.Columns
}

// Module is a fully loaded, immutable taxonomy module.
type Module struct {
	URL    string
	Code   string
	Tables []*Table

	tableByIndicator map[string]*Table
}

func (m *Module) tableByFilingIndicatorCode(code string) (*Table, bool) {
	if m.tableByIndicator == nil {
		m.tableByIndicator = map[string]*Table{}
		for _, t := range m.Tables {
			m.tableByIndicator[t.FilingIndicatorCode] = t
		}
	}
	t, ok := m.tableByIndicator[code]
	return t, ok
}

// --- on-disk serialisation shapes (component B) ---

type moduleIndexFile struct {
	// Entries maps an instance's schema-ref URL to the relative path (from
	// the index file's own directory) of the serialised module JSON.
	Entries map[string]string `json:"entries"`
}

type serializedModule struct {
	URL    string              `json:"url"`
	Code   string              `json:"code"`
	Tables []serializedTable    `json:"tables"`
}

type serializedTable struct {
	Code                string              `json:"code"`
	FilingIndicatorCode string              `json:"filing_indicator_code"`
	URL                 string              `json:"url"`
	Architecture        string              `json:"architecture"`
	OpenKeys            []string            `json:"open_keys"`
	AttributesHeader    []string            `json:"attributes_header"`
	Variables           []serializedCell    `json:"variables,omitempty"`
	Columns             []serializedCell    `json:"columns,omitempty"`
}

type serializedCell struct {
	DatapointID   string            `json:"datapoint_id"`
	Dimensions    map[string]string `json:"dimensions"`
	Datatype      string            `json:"attributes"`
	AllowedValues []string          `json:"allowed_values,omitempty"`
}

// ModuleCatalog loads taxonomy modules from an on-disk index directory
// and memoises the last-loaded module by URL so repeated lookups for
// the same module avoid re-reading and re-parsing its JSON files.
type ModuleCatalog struct {
	dir string

	lastURL    string
	lastModule *Module
}

// NewModuleCatalog opens an index directory containing index.json plus
// the per-module JSON files it references.
func NewModuleCatalog(dir string) *ModuleCatalog {
	return &ModuleCatalog{dir: dir}
}

// Load returns the Module for the given schema-ref URL. A missing index
// file or a missing module file referenced by a valid index entry is
// tolerated: Load returns (nil, nil) and downstream rules that depend on
// a taxonomy skip silently. A corrupt index or module
// file is fatal (a *CollaboratorError, wrapping ErrMissingCollaborator).
func (c *ModuleCatalog) Load(url string) (*Module, error) {
	if c.lastModule != nil && c.lastURL == url {
		return c.lastModule, nil
	}

	indexPath := filepath.Join(c.dir, "index.json")
	indexBytes, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapIOErr("reading module index", err)
	}

	var idx moduleIndexFile
	if err := json.Unmarshal(indexBytes, &idx); err != nil {
		return nil, &CollaboratorError{Detail: "module index " + indexPath + " is not valid JSON: " + err.Error()}
	}

	rel, ok := idx.Entries[url]
	if !ok {
		return nil, nil
	}

	modPath := filepath.Join(c.dir, rel)
	modBytes, err := os.ReadFile(modPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapIOErr("reading module file", err)
	}

	var sm serializedModule
	if err := json.Unmarshal(modBytes, &sm); err != nil {
		return nil, &CollaboratorError{Detail: "module file " + modPath + " is not valid JSON: " + err.Error()}
	}

	mod, err := materializeModule(&sm)
	if err != nil {
		return nil, err
	}

	c.lastURL = url
	c.lastModule = mod
	return mod, nil
}

func materializeModule(sm *serializedModule) (*Module, error) {
	mod := &Module{URL: sm.URL, Code: sm.Code}
	for _, st := range sm.Tables {
		t := &Table{
			Code:                st.Code,
			FilingIndicatorCode: st.FilingIndicatorCode,
			URL:                 st.URL,
			Architecture:        Architecture(st.Architecture),
			OpenKeys:            map[string]bool{},
			AttributesHeader:    st.AttributesHeader,
		}
		for _, k := range st.OpenKeys {
			t.OpenKeys[k] = true
		}

		materializeCells := func(in []serializedCell) []*Cell {
			out := make([]*Cell, 0, len(in))
			for _, sc := range in {
				cell := &Cell{
					DatapointID: sc.DatapointID,
					Dimensions:  sc.Dimensions,
					Datatype:    DatatypeMarker(sc.Datatype),
				}
				if len(sc.AllowedValues) > 0 {
					cell.AllowedValues = map[QName]bool{}
					for _, v := range sc.AllowedValues {
						cell.AllowedValues[ParseClarkName(v)] = true
					}
				}
				if dim, ok := cell.unitDimensionName(); ok {
					cell.HasUnitDim = true
					cell.IsBaseCurrencyDim = cell.Dimensions[dim] == string(placeholderBaseCurrency)
				}
				out = append(out, cell)
			}
			return out
		}

		t.Variables = materializeCells(st.Variables)
		t.Columns = materializeCells(st.Columns)
		mod.Tables = append(mod.Tables, t)
	}
	return mod, nil
}
