package validation

func init() {
	Register("XML-003", "", checkRootElement)
}

// checkRootElement reports XML-003 when the root element is not
// xbrli:xbrl.
func checkRootElement(ctx *Context) {
	if ctx.XMLRoot == nil {
		return
	}
	if ctx.XMLRoot.Tag == "xbrl" && ctx.XMLRoot.NamespaceURI() == nsXBRLI {
		return
	}
	ctx.AddFinding(ctx.FilePath, map[string]string{
		"detail": "root element is '" + ctx.XMLRoot.FullTag() + "', expected '{" + nsXBRLI + "}xbrl'",
	})
}
