package validation

import "github.com/beevik/etree"

func init() {
	Register("XML-001", "", checkXMLWellformedness)
}

// checkXMLWellformedness reports XML-001 when the file is not
// well-formed XML.
func checkXMLWellformedness(ctx *Context) {
	if ctx.XMLRoot != nil {
		return
	}
	doc := etree.NewDocument()
	err := doc.ReadFromBytes(ctx.RawBytes)
	if err == nil {
		return
	}
	ctx.AddFinding(ctx.FilePath, map[string]string{"detail": err.Error()})
}
