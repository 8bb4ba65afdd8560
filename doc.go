// Package xbridge converts EBA XBRL-XML instance documents to the
// equivalent XBRL-CSV report package, and validates instances in either
// form against the EBA filing-rule catalog.
//
// The conversion pipeline is: parse (ParseInstance) -> load the taxonomy
// module (ModuleCatalog.Load) -> resolve facts against the module's
// datapoints (Resolve) -> check filing indicators
// (CheckFilingIndicators) -> aggregate decimals parameters
// (NewDecimalsAggregator) -> write the CSV package (WritePackage).
// Convert wires all of these together.
package xbridge
