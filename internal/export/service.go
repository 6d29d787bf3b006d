package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/storage"
)

type loader interface {
	Load(ctx context.Context, scope Scope) ([]Subdivision, error)
}

// Service carrega o padrón e o renderiza.
type Service struct {
	repo     loader
	uploader storage.Uploader
	now      func() time.Time
}

// NewService cria o serviço. uploader nil equivale a storage.NoopUploader.
func NewService(repo *Repository, uploader storage.Uploader) *Service {
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}
	return &Service{repo: repo, uploader: uploader, now: time.Now}
}

func (s *Service) one(ctx context.Context, id int64) (Subdivision, error) {
	subs, err := s.repo.Load(ctx, Scope{SubdivisionID: &id, WithReports: true})
	if err != nil {
		return Subdivision{}, err
	}
	if len(subs) == 0 {
		return Subdivision{}, ErrSubdivisionNotFound
	}
	return subs[0], nil
}

func (s *Service) all(ctx context.Context, withReports bool) ([]Subdivision, error) {
	subs, err := s.repo.Load(ctx, Scope{WithReports: withReports})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNoSubdivisions
	}
	return subs, nil
}

// SubdivisionPDF gera o Reporte de Tomas Directas de um fraccionamiento.
func (s *Service) SubdivisionPDF(ctx context.Context, id int64) (*Document, error) {
	sub, err := s.one(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := renderSubdivisionPDF(sub, s.now())
	if err != nil {
		return nil, err
	}
	return &Document{Filename: fmt.Sprintf("fraccionamiento-%d.pdf", id), ContentType: ContentTypePDF, Body: body}, nil
}

// AllSubdivisionsPDF gera o relatório de todos os fraccionamientos.
func (s *Service) AllSubdivisionsPDF(ctx context.Context) (*Document, error) {
	subs, err := s.all(ctx, true)
	if err != nil {
		return nil, err
	}
	body, err := renderAllSubdivisionsPDF(subs, s.now())
	if err != nil {
		return nil, err
	}
	return &Document{Filename: "fraccionamientos.pdf", ContentType: ContentTypePDF, Body: body}, nil
}

// PadronPDF gera a tabela de totais por fraccionamiento.
func (s *Service) PadronPDF(ctx context.Context) (*Document, error) {
	subs, err := s.all(ctx, false)
	if err != nil {
		return nil, err
	}
	body, err := renderPadronPDF(subs, s.now())
	if err != nil {
		return nil, err
	}
	return &Document{Filename: "padron-fraccionamientos.pdf", ContentType: ContentTypePDF, Body: body}, nil
}

// SubdivisionExcel gera a planilha de um fraccionamiento.
func (s *Service) SubdivisionExcel(ctx context.Context, id int64) (*Document, error) {
	sub, err := s.one(ctx, id)
	if err != nil {
		return nil, err
	}
	body, err := renderSubdivisionExcel(sub, s.now())
	if err != nil {
		return nil, err
	}
	return &Document{Filename: fmt.Sprintf("fraccionamiento-%d.xlsx", id), ContentType: ContentTypeXLSX, Body: body}, nil
}

// AllSubdivisionsExcel gera a planilha consolidada.
func (s *Service) AllSubdivisionsExcel(ctx context.Context) (*Document, error) {
	subs, err := s.all(ctx, true)
	if err != nil {
		return nil, err
	}
	body, err := renderAllSubdivisionsExcel(subs, s.now())
	if err != nil {
		return nil, err
	}
	return &Document{Filename: "fraccionamientos.xlsx", ContentType: ContentTypeXLSX, Body: body}, nil
}

// Archive envia o documento ao storage configurado.
func (s *Service) Archive(ctx context.Context, doc *Document) (*storage.UploadResult, error) {
	res, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:          storage.ExportKey(s.now(), doc.Filename),
		Body:         doc.Body,
		ContentType:  doc.ContentType,
		CacheControl: "private, max-age=0",
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("key", res.Key).Int("bytes", len(doc.Body)).Msg("exportação arquivada")
	return res, nil
}
