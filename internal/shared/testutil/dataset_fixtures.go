package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// PrescribingCSV is a small extract in the shape of the English Prescribing
// Dataset: two regions, three practices, two numeric measures.
const PrescribingCSV = `REGIONAL_OFFICE_NAME,ICB_NAME,PRACTICE_NAME,BNF_CHEMICAL_SUBSTANCE,SNOMED_CODE,POSTCODE,ITEMS,NIC
NORTH,ICB A,P1,Atorvastatin,111,AB1 1AA,10,1.5
NORTH,ICB A,P2,Atorvastatin,222,AB1 1AB,20,2.5
SOUTH,ICB B,P3,Metformin,333,CD2 2CC,5,0.5
SOUTH,ICB B,P1,Metformin,444,CD2 2CD,7,1.0
`

// PrescribingHeader returns the columns of PrescribingCSV.
func PrescribingHeader() []string {
	return []string{
		"REGIONAL_OFFICE_NAME", "ICB_NAME", "PRACTICE_NAME", "BNF_CHEMICAL_SUBSTANCE",
		"SNOMED_CODE", "POSTCODE", "ITEMS", "NIC",
	}
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteXLSX writes header and rows to the first sheet of a new workbook.
func WriteXLSX(t *testing.T, dir, name string, header []string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}
