// Package export writes lead snapshots to spreadsheets and loads lead seed
// files for bulk import.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/omnisales/leadgen-cli/internal/model"
)

var leadColumns = []string{
	"ID", "Company", "Website", "LinkedIn", "Industry", "Specialty",
	"City", "Country", "Status", "Score", "Outreach Count", "Email", "Notes",
}

// WriteLeadsXLSX writes leads to a single-sheet workbook at path.
func WriteLeadsXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range leadColumns {
		header.AddCell().SetString(col)
	}

	for i := range leads {
		lead := &leads[i]
		row := sheet.AddRow()
		for _, val := range []string{
			lead.ID,
			lead.CompanyName,
			lead.Website,
			lead.LinkedinURL,
			lead.Industry,
			lead.Specialty,
			lead.City,
			lead.Country,
			string(lead.Status),
			strconv.Itoa(lead.Score),
			strconv.Itoa(lead.OutreachCount),
			lead.Meta().Email,
			lead.QualificationNotes,
		} {
			row.AddCell().SetString(val)
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

// ReadLeadsXLSX reads a workbook written by WriteLeadsXLSX back into leads.
// Only the columns the sheet carries are restored; history and conversations
// do not survive a spreadsheet round trip.
func ReadLeadsXLSX(path, workspaceID string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("export: workbook has no sheets")
	}

	var leads []model.Lead
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue // header
		}
		cells := make([]string, len(leadColumns))
		for j := range cells {
			if j < len(row.Cells) {
				cells[j] = row.Cells[j].String()
			}
		}
		if cells[1] == "" && cells[2] == "" {
			continue
		}

		score, _ := strconv.Atoi(cells[9])
		count, _ := strconv.Atoi(cells[10])
		lead := model.Lead{
			ID:                 cells[0],
			WorkspaceID:        workspaceID,
			CompanyName:        cells[1],
			Website:            cells[2],
			LinkedinURL:        cells[3],
			Industry:           cells[4],
			Specialty:          cells[5],
			City:               cells[6],
			Country:            cells[7],
			Status:             model.LeadStatus(cells[8]),
			Score:              score,
			OutreachCount:      count,
			QualificationNotes: cells[12],
		}
		if cells[11] != "" {
			lead.Metadata = &model.Metadata{Email: cells[11], Emails: []string{cells[11]}}
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
