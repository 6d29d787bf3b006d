package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	orgName     = "Junta de Agua Potable y Alcantarillado del Municipio de Ahome"
	reportTitle = "Reporte de Tomas Directas"
	padronTitle = "Padrón de Fraccionamientos Nuevos"
)

type rgb struct{ r, g, b int }

var (
	colorPrimary   = rgb{30, 64, 175}
	colorSecondary = rgb{100, 116, 139}
	colorSuccess   = rgb{16, 185, 129}
	colorDanger    = rgb{239, 68, 68}
	colorLight     = rgb{241, 245, 249}
	colorText      = rgb{30, 41, 59}
	colorWhite     = rgb{255, 255, 255}
)

// pdfWriter encapsula o gofpdf com tradução cp1252 e rodapé paginado.
type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	margin float64
}

func newPDFWriter(orientation string, margin float64, title string) *pdfWriter {
	pdf := gofpdf.New(orientation, "pt", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCreator("JAPAMA", true)
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), margin: margin}
	pdf.SetTitle(w.tr(title), false)
	pdf.SetFooterFunc(func() {
		_, h := pdf.GetPageSize()
		pdf.SetXY(margin, h-margin)
		w.font("", 8, colorSecondary)
		pdf.CellFormat(w.contentWidth(), 10, w.tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return w
}

func (w *pdfWriter) font(style string, size float64, c rgb) {
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) fill(c rgb) {
	w.pdf.SetFillColor(c.r, c.g, c.b)
}

func (w *pdfWriter) pageWidth() float64 {
	pw, _ := w.pdf.GetPageSize()
	return pw
}

func (w *pdfWriter) pageHeight() float64 {
	_, ph := w.pdf.GetPageSize()
	return ph
}

func (w *pdfWriter) contentWidth() float64 {
	return w.pageWidth() - 2*w.margin
}

// text escreve uma linha em (x, y) truncando ao espaço disponível.
func (w *pdfWriter) text(x, y, width float64, s, align string) {
	s = w.tr(s)
	if w.pdf.GetStringWidth(s) > width {
		for len(s) > 0 && w.pdf.GetStringWidth(s+"...") > width {
			s = s[:len(s)-1]
		}
		s += "..."
	}
	w.pdf.SetXY(x, y)
	w.pdf.CellFormat(width, 14, s, "", 0, align, false, 0, "")
}

func (w *pdfWriter) centered(y float64, s string) {
	w.text(0, y, w.pageWidth(), s, "C")
}

func (w *pdfWriter) newPage() {
	w.pdf.AddPage()
	w.pdf.SetY(w.margin)
}

// ensure abre nova página quando faltam h pontos até o rodapé.
func (w *pdfWriter) ensure(h float64) {
	if w.pdf.GetY()+h > w.pageHeight()-70 {
		w.newPage()
	}
}

func (w *pdfWriter) header(subdivision string) {
	w.font("B", 18, colorPrimary)
	w.centered(20, orgName)
	w.font("B", 14, colorText)
	w.centered(50, reportTitle)
	y := 75.0
	if subdivision != "" {
		w.font("", 14, colorText)
		w.centered(y, "Fraccionamiento: "+subdivision)
		y += 25
	}
	w.pdf.SetY(y + 20)
}

func (w *pdfWriter) infoBox(label, value string) {
	y := w.pdf.GetY()
	w.font("", 10, colorSecondary)
	w.text(w.margin, y, 150, label, "L")
	w.font("B", 11, colorText)
	w.text(w.margin+150, y, w.contentWidth()-150, value, "L")
	w.pdf.SetY(y + 18)
}

func (w *pdfWriter) sectionHeader(title string) {
	w.ensure(130)
	y := w.pdf.GetY()
	w.fill(colorPrimary)
	w.pdf.Rect(w.margin-10, y-5, w.contentWidth()+20, 28, "F")
	w.font("B", 13, colorWhite)
	w.text(w.margin, y+2, w.contentWidth(), title, "L")
	w.pdf.SetY(y + 32)
}

func (w *pdfWriter) banner(title string) {
	y := w.pdf.GetY()
	w.fill(colorPrimary)
	w.pdf.Rect(w.margin-10, y-8, w.contentWidth()+20, 40, "F")
	w.fill(colorSuccess)
	w.pdf.Rect(w.margin-10, y+28, w.contentWidth()+20, 4, "F")
	w.font("B", 16, colorWhite)
	w.text(w.margin, y+4, w.contentWidth(), title, "L")
	w.pdf.SetY(y + 48)
}

func statusColor(ok bool) rgb {
	if ok {
		return colorSuccess
	}
	return colorDanger
}

func (w *pdfWriter) houseCard(h House) {
	height := 55.0
	if len(h.Reports) > 0 {
		height = 70 + float64(len(h.Reports))*15
	}
	w.ensure(height)

	y := w.pdf.GetY()
	width := w.contentWidth()
	w.pdf.SetDrawColor(colorLight.r, colorLight.g, colorLight.b)
	w.pdf.SetLineWidth(1)
	w.pdf.Rect(w.margin, y, width, height, "D")

	w.font("B", 12, colorPrimary)
	w.text(w.margin+10, y+8, width-20, "Casa #"+h.Number, "L")

	statusY := y + 30
	w.font("", 9, colorSecondary)
	w.text(w.margin+10, statusY, 50, "Estado:", "L")

	w.font("B", 9, statusColor(h.Inhabited))
	w.text(w.margin+60, statusY, 25, "["+yesNo(h.Inhabited)+"]", "L")
	w.font("", 9, colorText)
	inhabited := "Deshabitada"
	if h.Inhabited {
		inhabited = "Habitada"
	}
	w.text(w.margin+85, statusY, 110, inhabited, "L")

	w.font("B", 9, statusColor(h.Water))
	w.text(w.margin+200, statusY, 25, "["+yesNo(h.Water)+"]", "L")
	w.font("", 9, colorText)
	water := "Sin agua"
	if h.Water {
		water = "Con agua"
	}
	w.text(w.margin+225, statusY, 110, water, "L")

	if len(h.Reports) > 0 {
		w.font("B", 9, colorSecondary)
		w.text(w.margin+10, statusY+20, width-20, "Historial de Reportes:", "L")
		for i, r := range h.Reports {
			ry := statusY + 35 + float64(i)*15
			w.font("", 8, colorSecondary)
			w.text(w.margin+20, ry, 10, "-", "L")
			w.font("B", 8, colorPrimary)
			w.text(w.margin+30, ry, 60, shortDate(r.Date), "L")
			w.font("", 8, colorText)
			w.text(w.margin+90, ry, width-100, orDefault(r.Comments, "Sin comentarios"), "L")
		}
	}
	w.pdf.SetY(y + height + 8)
}

func (w *pdfWriter) streets(streets []Street) {
	for i, st := range streets {
		if i > 0 {
			w.pdf.SetY(w.pdf.GetY() + 18)
		}
		w.sectionHeader("Calle: " + st.Name)
		if len(st.Houses) == 0 {
			w.font("I", 10, colorSecondary)
			w.text(w.margin+10, w.pdf.GetY(), w.contentWidth()-10, "Sin casas registradas en esta calle", "L")
			w.pdf.SetY(w.pdf.GetY() + 18)
			continue
		}
		for _, h := range st.Houses {
			w.houseCard(h)
		}
	}
}

func (w *pdfWriter) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSubdivisionPDF desenha o relatório de um fraccionamiento.
func renderSubdivisionPDF(sub Subdivision, now time.Time) ([]byte, error) {
	w := newPDFWriter("P", 50, reportTitle)
	w.header(sub.Name)
	w.infoBox("Fecha de emisión:", longDate(now))
	w.infoBox("Total de casas:", fmt.Sprint(StatsOf(sub).Total))
	w.pdf.SetY(w.pdf.GetY() + 20)
	w.streets(sub.Streets)
	return w.bytes()
}

// renderAllSubdivisionsPDF desenha um fraccionamiento por página, com estatísticas.
func renderAllSubdivisionsPDF(subs []Subdivision, now time.Time) ([]byte, error) {
	w := newPDFWriter("P", 50, reportTitle)
	w.header("")
	w.infoBox("Fecha de emisión:", longDate(now))
	w.infoBox("Total de casas:", fmt.Sprint(StatsOf(subs...).Total))
	w.pdf.SetY(w.pdf.GetY() + 20)

	for i, sub := range subs {
		title := sub.Name
		if i > 0 {
			w.newPage()
			title = "Fraccionamiento: " + sub.Name
		}
		w.banner(title)

		stats := StatsOf(sub)
		w.infoBox("Total de casas:", fmt.Sprint(stats.Total))
		w.infoBox("Casas habitadas:", fmt.Sprintf("%d (%d%%)", stats.Inhabited, stats.Percent(stats.Inhabited)))
		w.infoBox("Casas con agua:", fmt.Sprintf("%d (%d%%)", stats.Water, stats.Percent(stats.Water)))
		w.pdf.SetY(w.pdf.GetY() + 20)
		w.streets(sub.Streets)
	}
	return w.bytes()
}

// renderPadronPDF desenha a tabela paisagem com os totais por fraccionamiento.
func renderPadronPDF(subs []Subdivision, now time.Time) ([]byte, error) {
	w := newPDFWriter("L", 40, padronTitle)
	w.font("B", 22, colorPrimary)
	w.centered(25, orgName)
	w.font("", 16, colorText)
	w.centered(53, padronTitle)

	w.font("", 9, colorSecondary)
	w.text(w.margin, 90, w.contentWidth(), "Fecha: "+longDate(now), "R")

	type column struct {
		title string
		x, w  float64
		align string
	}
	cols := []column{
		{"Fraccionamiento", 50, 200, "L"},
		{"Total", 260, 70, "C"},
		{"Hab. c/Agua", 340, 90, "C"},
		{"Hab. s/Agua", 440, 90, "C"},
		{"Deshab. c/Agua", 540, 100, "C"},
		{"Deshab. s/Agua", 650, 100, "C"},
	}

	y := 115.0
	w.font("B", 9, colorPrimary)
	for _, c := range cols {
		w.text(c.x, y, c.w, c.title, c.align)
	}
	y += 16
	w.pdf.SetDrawColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	w.pdf.SetLineWidth(1.5)
	w.pdf.Line(50, y, w.pageWidth()-50, y)
	y += 6

	for i, sub := range subs {
		if y > w.pageHeight()-60 {
			w.newPage()
			y = w.margin + 14
		}
		if i%2 == 0 {
			w.fill(colorLight)
			w.pdf.Rect(45, y-1, w.pageWidth()-90, 16, "F")
		}
		s := StatsOf(sub)
		values := []string{
			sub.Name,
			fmt.Sprint(s.Total),
			fmt.Sprint(s.InhabitedWater),
			fmt.Sprint(s.InhabitedDry),
			fmt.Sprint(s.EmptyWater),
			fmt.Sprint(s.EmptyDry),
		}
		for j, c := range cols {
			style := ""
			if j == 1 {
				style = "B"
			}
			w.font(style, 9, colorText)
			w.text(c.x, y, c.w, values[j], c.align)
		}
		y += 18
	}
	return w.bytes()
}
