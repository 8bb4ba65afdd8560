package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func init() {
	Register("XML-010", "", checkSingleSchemaRef)
	Register("XML-012", "", checkSchemaRefEntryPoint)
}

// checkSingleSchemaRef reports XML-010 when the document does not carry
// exactly one link:schemaRef element.
func checkSingleSchemaRef(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	refs := childrenNamed(ctx.XMLRoot, "schemaRef")
	if len(refs) == 1 {
		return
	}
	if len(refs) == 0 {
		ctx.AddFinding(ctx.FilePath, map[string]string{"detail": "no link:schemaRef element found"})
		return
	}
	ctx.AddFinding(ctx.FilePath, map[string]string{
		"detail": "expected exactly 1 link:schemaRef element",
	})
}

// checkSchemaRefEntryPoint reports XML-012 when the schemaRef href does
// not resolve to a known entry-point URL in the module index. ModuleDir,
// when set on the context, lets this rule consult the same on-disk index
// the taxonomy module loader uses.
func checkSchemaRefEntryPoint(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	refs := childrenNamed(ctx.XMLRoot, "schemaRef")
	if len(refs) != 1 {
		return
	}
	href := refs[0].SelectAttrValue("href", "")
	if href == "" {
		ctx.AddFinding(ctx.FilePath, map[string]string{"detail": "link:schemaRef has no xlink:href attribute"})
		return
	}

	known, ok := loadKnownEntryPoints(ctx.ModuleDir)
	if !ok {
		return
	}
	if !known[href] {
		ctx.AddFinding(ctx.FilePath, map[string]string{
			"detail": "schemaRef href '" + href + "' is not a known entry point URL",
		})
	}
}

func loadKnownEntryPoints(moduleDir string) (map[string]bool, bool) {
	if moduleDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(moduleDir, "index.json"))
	if err != nil {
		return nil, false
	}
	var idx struct {
		Entries map[string]string `json:"entries"`
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, false
	}
	out := make(map[string]bool, len(idx.Entries))
	for k := range idx.Entries {
		out[k] = true
	}
	return out, true
}
