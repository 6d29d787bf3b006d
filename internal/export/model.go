// Package export gera os relatórios do padrón em PDF e Excel.
package export

import (
	"math"

	"github.com/japama/watercontract/internal/apperr"
)

var (
	ErrSubdivisionNotFound = apperr.NotFound("SUBDIVISION_NOT_FOUND", "Subdivision not found")
	ErrNoSubdivisions      = apperr.NotFound("NO_SUBDIVISIONS", "No subdivisions found")
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document é um arquivo gerado pronto para download ou arquivamento.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Subdivision agrupa as calles de um fraccionamiento.
type Subdivision struct {
	ID      int64
	Name    string
	Streets []Street
}

// Street agrupa as casas de uma calle.
type Street struct {
	ID     int64
	Name   string
	Houses []House
}

// House traz o estado da toma e seus reportes, do mais recente ao mais antigo.
type House struct {
	ID        int64
	Number    string
	Inhabited bool
	Water     bool
	Reports   []Report
}

// Report é uma linha do historial de inspeção.
type Report struct {
	Date     string
	Comments string
}

// Stats resume o padrón de um ou mais fraccionamientos.
type Stats struct {
	Total          int
	Inhabited      int
	Water          int
	InhabitedWater int
	InhabitedDry   int
	EmptyWater     int
	EmptyDry       int
}

// Add soma as casas de sub.
func (s *Stats) Add(sub Subdivision) {
	for _, st := range sub.Streets {
		for _, h := range st.Houses {
			s.Total++
			switch {
			case h.Inhabited && h.Water:
				s.Inhabited++
				s.Water++
				s.InhabitedWater++
			case h.Inhabited:
				s.Inhabited++
				s.InhabitedDry++
			case h.Water:
				s.Water++
				s.EmptyWater++
			default:
				s.EmptyDry++
			}
		}
	}
}

// StatsOf calcula as estatísticas dos fraccionamientos informados.
func StatsOf(subs ...Subdivision) Stats {
	var s Stats
	for _, sub := range subs {
		s.Add(sub)
	}
	return s
}

// Percent devolve n sobre o total, arredondado; zero quando não há casas.
func (s Stats) Percent(n int) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(s.Total) * 100))
}
