package strategy

import (
	"fmt"

	"pagesift/models"
	"pagesift/pkg/classify"
	"pagesift/pkg/dom"
)

// tableStrategy extracts one record per data row. Field names come from the
// header row texts, or Column_N when no usable header exists.
type tableStrategy struct{}

func (s *tableStrategy) Category() models.Category {
	return models.CategoryTable
}

func (s *tableStrategy) Extract(doc *dom.Document) []*models.Record {
	tables := classify.QualifyingTables(doc)
	var records []*models.Record

	for tableIdx, table := range tables {
		headers, dataRows := tableHeaders(table)
		if len(dataRows) == 0 {
			continue
		}

		for _, row := range dataRows {
			cells := row.Select("th, td")
			if len(cells) == 0 {
				continue
			}

			rec := models.NewRecord()
			// Row/column mismatch is tolerated: truncate to the shorter
			// length and flag the row, still emitting it.
			width := len(cells)
			if len(headers) < width {
				width = len(headers)
			}
			for i := 0; i < width; i++ {
				rec.SetFirst(headers[i], collapse(cells[i].Text()))
			}
			if len(cells) != len(headers) {
				rec.Set("_partial", true)
			}
			if len(tables) > 1 {
				rec.Set("_table_index", tableIdx)
			}
			records = append(records, rec)
		}
	}
	return records
}

// tableHeaders resolves the header names and the data rows of a table.
// Explicit thead headers win; otherwise the first row serves as header.
// Blank headers fall back to Column_N.
func tableHeaders(table *dom.Node) ([]string, []*dom.Node) {
	var headers []string
	for _, th := range table.Select("thead tr th") {
		headers = append(headers, collapse(th.Text()))
	}

	rows := table.Select("tr")
	var dataRows []*dom.Node
	if len(headers) > 0 {
		// Body rows exclude any row living inside thead.
		for _, r := range rows {
			if len(r.Select("th")) > 0 && len(r.Select("td")) == 0 {
				continue
			}
			dataRows = append(dataRows, r)
		}
	} else if len(rows) > 0 {
		for _, cell := range rows[0].Select("th, td") {
			headers = append(headers, collapse(cell.Text()))
		}
		dataRows = rows[1:]
	}

	if allBlank(headers) {
		for i := range headers {
			headers[i] = fmt.Sprintf("Column_%d", i+1)
		}
	}
	return headers, dataRows
}

func allBlank(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return false
		}
	}
	return len(headers) > 0
}
