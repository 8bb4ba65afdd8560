package xbridge

// Namespace URIs for the fixed-schema parts of an XBRL-XML instance.
const (
	nsXBRLI = "http://www.xbrl.org/2003/instance"
	nsLink  = "http://www.xbrl.org/2003/linkbase"
	nsXlink = "http://www.w3.org/1999/xlink"
	nsXBRLDI = "http://xbrl.org/2006/xbrldi"
	nsFind  = "http://www.eurofiling.info/xbrl/ext/filing-indicators"
	nsISO4217 = "http://www.xbrl.org/2003/iso4217"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
	nsXML   = "http://www.w3.org/XML/1998/namespace"
	nsXI    = "http://www.w3.org/2001/XInclude"
)

// pureMeasure is the xbrli:pure unit measure non-monetary numeric facts
// must carry.
var pureMeasure = QName{Space: nsXBRLI, Local: "pure"}
