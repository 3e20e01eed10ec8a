package http

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/library-register/cmd/api/record"
)

// printColumns are the main columns of the printable list, in display order.
var printColumns = []struct {
	Field string
	Title string
}{
	{"acquisitionNumber", "Acq. No."},
	{"bookTitle", "Title"},
	{"publisher", "Publisher"},
	{"price", "Price"},
	{"studentName", "Student"},
	{"borrowDate", "Borrowed"},
	{"dueDate", "Due"},
}

var printPage = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Library acquisition register</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #444; padding: 4px 6px; text-align: left; }
</style>
</head>
<body onload="window.print()">
<h1>Library acquisition register</h1>
<p>Printed {{.PrintedAt}}{{if .Query}}, records matching "{{.Query}}"{{end}}: {{len .Rows}} records.</p>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type printView struct {
	PrintedAt string
	Query     string
	Columns   []string
	Rows      [][]string
}

func newPrintView(records []record.AcquisitionRecord, query string, at time.Time) printView {
	view := printView{
		PrintedAt: at.Format("2006-01-02 15:04"),
		Query:     query,
		Rows:      make([][]string, 0, len(records)),
	}
	for _, c := range printColumns {
		view.Columns = append(view.Columns, c.Title)
	}
	for _, r := range records {
		row := make([]string, 0, len(printColumns))
		for _, c := range printColumns {
			v, _ := r.Field(c.Field)
			row = append(row, v)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

/* Renders the records matching the query as a printable table with no action controls. */
func (h *RecordHandler) print(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	sortBy, sortDirection, valid := extractOrderParams(query)
	if !valid {
		h.handleError(record.ErrResponseQuerySortByInvalid, w, r)
		return
	}

	q := query.Get("q")
	found, err := h.recordService.Search(r.Context(), q)
	if err != nil {
		h.handleError(err, w, r)
		return
	}

	var page bytes.Buffer
	view := newPrintView(record.SortRecords(found, sortBy, sortDirection), q, h.clock())
	if err := printPage.Execute(&page, view); err != nil {
		slog.ErrorContext(r.Context(), "rendering print page", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := page.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "writing print page", "err", err)
	}
}
