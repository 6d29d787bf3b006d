package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/export"
)

// writeDocument entrega o arquivo gerado. Com ?archive=true o documento é
// enviado ao storage e a resposta traz a chave e a URL.
func (h *Handler) writeDocument(w http.ResponseWriter, r *http.Request, doc *export.Document) {
	if archive, _ := strconv.ParseBool(r.URL.Query().Get("archive")); archive {
		uploaded, err := h.exports.Archive(r.Context(), doc)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, uploaded)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		log.Warn().Err(err).Str("file", doc.Filename).Msg("export: falha ao enviar arquivo")
	}
}

func (h *Handler) renderByID(render func(context.Context, int64) (*export.Document, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		doc, err := render(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.writeDocument(w, r, doc)
	}
}

func (h *Handler) render(render func(context.Context) (*export.Document, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := render(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.writeDocument(w, r, doc)
	}
}

// SubdivisionPDF gera o Reporte de Tomas Directas de um fraccionamiento.
func (h *Handler) SubdivisionPDF(w http.ResponseWriter, r *http.Request) {
	h.renderByID(h.exports.SubdivisionPDF)(w, r)
}

// AllSubdivisionsPDF gera o relatório de todos os fraccionamientos.
func (h *Handler) AllSubdivisionsPDF(w http.ResponseWriter, r *http.Request) {
	h.render(h.exports.AllSubdivisionsPDF)(w, r)
}

// PadronPDF gera o resumo do padrón por fraccionamiento.
func (h *Handler) PadronPDF(w http.ResponseWriter, r *http.Request) {
	h.render(h.exports.PadronPDF)(w, r)
}

// SubdivisionExcel gera a planilha de um fraccionamiento.
func (h *Handler) SubdivisionExcel(w http.ResponseWriter, r *http.Request) {
	h.renderByID(h.exports.SubdivisionExcel)(w, r)
}

// AllSubdivisionsExcel gera a planilha de todos os fraccionamientos.
func (h *Handler) AllSubdivisionsExcel(w http.ResponseWriter, r *http.Request) {
	h.render(h.exports.AllSubdivisionsExcel)(w, r)
}
