package xbridge

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// reportPackageManifest is META-INF/reportPackage.json: a
// minimal manifest pointing at reports/report.json.
type reportPackageManifest struct {
	DocumentInfo struct {
		DocumentType string `json:"documentType"`
	} `json:"documentInfo"`
}

type reportManifest struct {
	ParametersFile       string   `json:"parametersFile"`
	FilingIndicatorsFile string   `json:"filingIndicatorsFile"`
	Tables               []string `json:"tables"`
}

// WritePackage materialises the XBRL-CSV package for a resolved
// conversion. It builds every CSV into a buffer first, writes the
// archive to a temporary file in outputDir, and renames it into place
// only on success, so a crash mid-write never leaves a partial package
// at the destination path.
func WritePackage(ctx context.Context, inst *Instance, res *ResolveResult, agg *DecimalsAggregator, outputDir, stem string) (string, error) {
	topFolder := stem

	byTable := map[string][]ResolvedCell{}
	var tableOrder []string
	for _, c := range res.Cells {
		if _, seen := byTable[c.TableCode]; !seen {
			tableOrder = append(tableOrder, c.TableCode)
		}
		byTable[c.TableCode] = append(byTable[c.TableCode], c)
	}
	sort.Strings(tableOrder)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest := reportPackageManifest{}
	manifest.DocumentInfo.DocumentType = "http://www.xbrl.org/CR/2020-02-19/xbrl-csv"
	if err := writeJSONEntry(zw, topFolder+"/META-INF/reportPackage.json", manifest); err != nil {
		return "", err
	}

	report := reportManifest{
		ParametersFile:       "reports/parameters.csv",
		FilingIndicatorsFile: "reports/FilingIndicators.csv",
	}
	for _, tc := range tableOrder {
		report.Tables = append(report.Tables, "reports/"+tc+".csv")
	}
	if err := writeJSONEntry(zw, topFolder+"/reports/report.json", report); err != nil {
		return "", err
	}

	if err := writeParametersCSV(zw, topFolder, inst, res, agg); err != nil {
		return "", err
	}
	if err := writeFilingIndicatorsCSV(zw, topFolder, inst); err != nil {
		return "", err
	}

	for _, tc := range tableOrder {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := writeTableCSV(zw, topFolder, tc, byTable[tc]); err != nil {
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", wrapIOErr("closing zip archive", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", wrapIOErr("creating output directory", err)
	}

	finalPath := filepath.Join(outputDir, stem+".zip")
	tmpPath := filepath.Join(outputDir, stem+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return "", wrapIOErr("writing temporary package file", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", wrapIOErr("renaming temporary package file into place", err)
	}

	return finalPath, nil
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return wrapIOErr("creating zip entry "+name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return wrapIOErr("encoding "+name, err)
	}
	return nil
}

func writeParametersCSV(zw *zip.Writer, topFolder string, inst *Instance, res *ResolveResult, agg *DecimalsAggregator) error {
	w, err := zw.Create(topFolder + "/reports/parameters.csv")
	if err != nil {
		return wrapIOErr("creating parameters.csv", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "value"}); err != nil {
		return wrapIOErr("writing parameters.csv header", err)
	}
	rows := [][]string{
		{"entityID", inst.EntityIdentifier.Value},
		{"refPeriod", inst.ReferencePeriod},
	}
	if res.BaseCurrency != nil {
		rows = append(rows, []string{"baseCurrency", res.BaseCurrency.Measure()})
	}
	for _, p := range agg.Parameters() {
		if !p.Value.IsSet() {
			continue
		}
		rows = append(rows, []string{p.Name, p.Value.String()})
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return wrapIOErr("writing parameters.csv row", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFilingIndicatorsCSV(zw *zip.Writer, topFolder string, inst *Instance) error {
	w, err := zw.Create(topFolder + "/reports/FilingIndicators.csv")
	if err != nil {
		return wrapIOErr("creating FilingIndicators.csv", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"filingIndicator", "filed"}); err != nil {
		return wrapIOErr("writing FilingIndicators.csv header", err)
	}
	for _, fi := range inst.FilingIndicators {
		if !fi.Filed {
			continue
		}
		if err := cw.Write([]string{fi.TableCode, "true"}); err != nil {
			return wrapIOErr("writing FilingIndicators.csv row", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTableCSV(zw *zip.Writer, topFolder, tableCode string, cells []ResolvedCell) error {
	w, err := zw.Create(topFolder + "/reports/" + tableCode + ".csv")
	if err != nil {
		return wrapIOErr("creating "+tableCode+".csv", err)
	}

	openKeyNames := map[string]bool{}
	hasUnit, hasDecimals := false, false
	for _, c := range cells {
		for k := range c.OpenKeys {
			openKeyNames[k] = true
		}
		if c.Unit != nil {
			hasUnit = true
		}
		if c.Fact.HasDecimals {
			hasDecimals = true
		}
	}
	openKeys := make([]string, 0, len(openKeyNames))
	for k := range openKeyNames {
		openKeys = append(openKeys, k)
	}
	sort.Strings(openKeys)

	header := append(append([]string{}, openKeys...), "datapoint", "value")
	if hasUnit {
		header = append(header, "unit")
	}
	if hasDecimals {
		header = append(header, "decimals")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return wrapIOErr("writing "+tableCode+".csv header", err)
	}

	for _, c := range cells {
		row := make([]string, 0, len(header))
		for _, k := range openKeys {
			row = append(row, c.OpenKeys[k])
		}
		row = append(row, c.DatapointID, c.Value)
		if hasUnit {
			if c.Unit != nil {
				row = append(row, c.Unit.Measure())
			} else {
				row = append(row, "")
			}
		}
		if hasDecimals {
			if c.Fact.HasDecimals {
				row = append(row, c.Fact.Decimals.String())
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return wrapIOErr("writing "+tableCode+".csv row", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
