package validation

import "regexp"

var encodingDeclRE = regexp.MustCompile(`<\?xml\s[^?]*encoding\s*=\s*['"]([^'"]+)['"]`)

func init() {
	Register("XML-002", "", checkUTF8Encoding)
}

// checkUTF8Encoding reports XML-002 when the file declares a non-UTF-8
// encoding. Files with no declared encoding default to UTF-8 per the XML
// specification and pass.
func checkUTF8Encoding(ctx *Context) {
	head := ctx.RawBytes
	if len(head) > 200 {
		head = head[:200]
	}
	m := encodingDeclRE.FindSubmatch(head)
	if m == nil {
		return
	}
	declared := string(m[1])
	if lower(declared) == "utf-8" {
		return
	}
	ctx.AddFinding(ctx.FilePath+":1", map[string]string{
		"detail": "declared encoding is '" + declared + "', expected 'utf-8'",
	})
}
