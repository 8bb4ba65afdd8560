package validation

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/speedata/xbridge"
)

// Context carries everything a rule implementation needs and collects
// the findings it reports. XMLRoot is the already-parsed document tree
// (beevik/etree, repurposed here from write-side usage to reader-side
// structural traversal) shared by every XML-rule-set rule so no rule
// body re-parses the document.
type Context struct {
	RuleSet    RuleSet
	Rule       *RuleDefinition
	FilePath   string
	RawBytes   []byte
	XMLRoot    *etree.Element // nil if the document did not parse
	// ModuleDir is the taxonomy module catalog directory (component B),
	// consulted by rules that need to check a schemaRef or filing
	// indicator against the known entry points / tables.
	ModuleDir string
	Module    *xbridge.Module
	Scans     *Scans

	findings []Finding
}

// Findings returns the findings this context's rule has accumulated so
// far.
func (c *Context) Findings() []Finding {
	return c.findings
}

// defaultFormatString renders a message template with {named}
// placeholders, leaving any placeholder absent from values untouched,
// so a rule's message template never fails to render even if the
// caller forgot a key.
func defaultFormatString(template string, values map[string]string) string {
	if values == nil {
		return template
	}
	var b strings.Builder
	i := 0
	for i < len(template) {
		open := strings.IndexByte(template[i:], '{')
		if open < 0 {
			b.WriteString(template[i:])
			break
		}
		b.WriteString(template[i : i+open])
		i += open
		close := strings.IndexByte(template[i:], '}')
		if close < 0 {
			b.WriteString(template[i:])
			break
		}
		key := template[i+1 : i+close]
		if v, ok := values[key]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("{" + key + "}")
		}
		i += close + 1
	}
	return b.String()
}

// AddFinding reports a validation finding. ruleCode overrides the
// current rule's code when non-empty (for rules emitting findings under
// a sub-rule identity); values fills the rule's message template.
func (c *Context) AddFinding(location string, values map[string]string, ruleCode ...string) {
	code := c.Rule.Code
	if len(ruleCode) > 0 && ruleCode[0] != "" {
		code = ruleCode[0]
	}
	template := c.Rule.EffectiveMessage(c.RuleSet)
	severity := c.Rule.EffectiveSeverity(c.RuleSet)

	message := defaultFormatString(template, values)

	c.findings = append(c.findings, Finding{
		RuleCode: code,
		Severity: severity,
		RuleSet:  c.RuleSet,
		Message:  message,
		Location: location,
		Context:  values,
	})
}
