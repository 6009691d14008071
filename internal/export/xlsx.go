package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/turkology-cli/internal/model"
)

// reviewColumns are the header cells of the review sheet.
var reviewColumns = []string{
	"ID", "Volume", "Number", "Type", "Fully Parsed",
	"Authors", "Editors", "Title", "Location", "Year",
	"Published In", "Keywords", "Remaining Text", "Raw Text",
}

// WriteXLSX writes a review sheet with one row per citation. Rows that are
// not fully parsed carry their remaining text so reviewers can see what the
// extractor left over.
func WriteXLSX(w io.Writer, citations []model.Citation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Citations")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range reviewColumns {
		header.AddCell().SetString(col)
	}

	for i := range citations {
		writeReviewRow(sheet.AddRow(), &citations[i])
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func writeReviewRow(row *xlsx.Row, c *model.Citation) {
	row.AddCell().SetString(c.ID)
	row.AddCell().SetString(c.Volume)
	row.AddCell().SetInt(c.Number)
	row.AddCell().SetString(string(c.Type))
	row.AddCell().SetBool(c.FullyParsed)
	row.AddCell().SetString(joinPeople(c.Authors))
	row.AddCell().SetString(joinPeople(c.Editors))
	row.AddCell().SetString(c.Title)
	row.AddCell().SetString(c.Location)

	year := row.AddCell()
	if c.DatePublished != nil && c.DatePublished.Year != 0 {
		year.SetInt(c.DatePublished.Year)
	}

	published := row.AddCell()
	if c.PublishedIn != nil {
		published.SetString(c.PublishedIn.Raw)
	}

	codes := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		if k.Code != "" {
			codes = append(codes, k.Code)
		} else {
			codes = append(codes, k.Raw)
		}
	}
	row.AddCell().SetString(strings.Join(codes, ", "))
	row.AddCell().SetString(c.RemainingText)
	row.AddCell().SetString(c.RawText)
}

func joinPeople(people []model.Person) string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Raw
	}
	return strings.Join(names, "; ")
}
