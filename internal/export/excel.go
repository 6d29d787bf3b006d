package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	excelTitle         = "Reporte de Tomas Directas en Fraccionamientos - JAPAMA"
	sheetSubdivision   = "Reporte de Tomas Directas"
	sheetAll           = "Todos los Fraccionamientos"
	excelHeaderColor   = "1E40AF"
	excelSuccessColor  = "10B981"
	excelDangerColor   = "EF4444"
	excelSecondaryText = "64748B"
)

// sheetWriter escreve linhas em sequência e guarda o primeiro erro.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	cols   int
	err    error
	styles map[string]int
}

func newSheetWriter(sheet string, widths []float64) (*sheetWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: sheet, row: 1, cols: len(widths), styles: map[string]int{}}
	w.check(f.SetDocProps(&excelize.DocProperties{Creator: "JAPAMA", Title: excelTitle}))
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.check(f.SetColWidth(sheet, col, col, width))
	}

	w.style("title", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: excelHeaderColor},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	w.style("info", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	w.style("date", &excelize.Style{Font: &excelize.Font{Size: 10, Color: excelSecondaryText}})
	w.style("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{excelHeaderColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	w.style("yes", &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{excelSuccessColor}},
	})
	w.style("no", &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{excelDangerColor}},
	})
	w.style("stats", &excelize.Style{Font: &excelize.Font{Bold: true}})

	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return w, nil
}

func (w *sheetWriter) check(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) style(name string, s *excelize.Style) {
	id, err := w.f.NewStyle(s)
	w.check(err)
	w.styles[name] = id
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	w.check(err)
	return name
}

// put escreve a linha atual e avança.
func (w *sheetWriter) put(values ...any) int {
	if w.err != nil {
		return w.row
	}
	row := w.row
	if len(values) > 0 {
		w.check(w.f.SetSheetRow(w.sheet, w.cell(1, row), &values))
	}
	w.row++
	return row
}

// banner escreve uma linha mesclada em todas as colunas.
func (w *sheetWriter) banner(text, style string, height float64) {
	row := w.put(text)
	first, last := w.cell(1, row), w.cell(w.cols, row)
	w.check(w.f.MergeCell(w.sheet, first, last))
	w.check(w.f.SetCellStyle(w.sheet, first, last, w.styles[style]))
	w.check(w.f.SetRowHeight(w.sheet, row, height))
}

func (w *sheetWriter) header(titles ...any) {
	row := w.put(titles...)
	w.check(w.f.SetCellStyle(w.sheet, w.cell(1, row), w.cell(w.cols, row), w.styles["header"]))
	w.check(w.f.SetRowHeight(w.sheet, row, 25))
}

func (w *sheetWriter) flag(col, row int, v bool) {
	style := w.styles["no"]
	if v {
		style = w.styles["yes"]
	}
	c := w.cell(col, row)
	w.check(w.f.SetCellStyle(w.sheet, c, c, style))
}

// houses escreve uma linha por reporte; os dados da casa só na primeira.
// prefix são as colunas anteriores a Calle.
func (w *sheetWriter) houses(prefix []any, street Street) {
	first := len(prefix) + 1
	for _, h := range street.Houses {
		lead := append(append([]any{}, prefix...), street.Name, h.Number, yesNo(h.Inhabited), yesNo(h.Water))
		if len(h.Reports) == 0 {
			row := w.put(append(lead, "-", "")...)
			w.flag(first+2, row, h.Inhabited)
			w.flag(first+3, row, h.Water)
			continue
		}
		for i, r := range h.Reports {
			values := make([]any, len(lead), len(lead)+2)
			if i == 0 {
				copy(values, lead)
			} else {
				for j := range values {
					values[j] = ""
				}
			}
			row := w.put(append(values, numericDate(r.Date), orDefault(r.Comments, "Sin comentarios"))...)
			if i == 0 {
				w.flag(first+2, row, h.Inhabited)
				w.flag(first+3, row, h.Water)
			}
		}
	}
}

func (w *sheetWriter) summary(label string, s Stats) {
	w.put()
	row := w.put(
		label,
		fmt.Sprintf("Total: %d", s.Total),
		fmt.Sprintf("Habitadas: %d (%d%%)", s.Inhabited, s.Percent(s.Inhabited)),
		fmt.Sprintf("Con agua: %d (%d%%)", s.Water, s.Percent(s.Water)),
	)
	w.check(w.f.SetCellStyle(w.sheet, w.cell(1, row), w.cell(4, row), w.styles["stats"]))
}

func (w *sheetWriter) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.err != nil {
		return nil, fmt.Errorf("render xlsx: %w", w.err)
	}
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSubdivisionExcel gera a planilha de um fraccionamiento.
func renderSubdivisionExcel(sub Subdivision, now time.Time) ([]byte, error) {
	w, err := newSheetWriter(sheetSubdivision, []float64{25, 12, 12, 12, 15, 50})
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	w.banner(excelTitle, "title", 30)
	w.banner("Fraccionamiento: "+sub.Name, "info", 20)
	w.banner("Fecha de emisión: "+longDate(now), "date", 18)
	w.header("Calle", "Casa #", "Habitada", "Agua", "Fecha Reporte", "Comentarios")
	w.put()
	for _, st := range sub.Streets {
		w.houses(nil, st)
	}
	w.summary("Resumen:", StatsOf(sub))
	return w.bytes()
}

// renderAllSubdivisionsExcel gera a planilha consolidada com a coluna Fraccionamiento.
func renderAllSubdivisionsExcel(subs []Subdivision, now time.Time) ([]byte, error) {
	w, err := newSheetWriter(sheetAll, []float64{25, 25, 12, 12, 12, 15, 50})
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	w.banner(excelTitle, "title", 30)
	w.banner("Fecha de emisión: "+longDate(now), "date", 18)
	w.header("Fraccionamiento", "Calle", "Casa #", "Habitada", "Agua", "Fecha Reporte", "Comentarios")
	w.put()
	for _, sub := range subs {
		for _, st := range sub.Streets {
			w.houses([]any{sub.Name}, st)
		}
	}
	w.summary("Resumen General:", StatsOf(subs...))
	return w.bytes()
}
