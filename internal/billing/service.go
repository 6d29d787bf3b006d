package billing

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/japama/watercontract/internal/util"
)

// Service executa a cobrança e as consultas de pagamentos.
type Service struct {
	repo *Repository
}

// NewService cria o serviço.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func positive(value any) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if !d.IsPositive() {
		return errors.New("Importe must be greater than 0")
	}
	return nil
}

// Collect registra o pagamento e retira a casa do padrón na mesma transação.
// Uma segunda cobrança concorrente da mesma casa encontra ErrHouseNotFound.
func (s *Service) Collect(ctx context.Context, in CollectInput, cobradorID int64) (*Payment, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.HouseID, validation.Required.Error("house_id is required"), validation.Min(int64(1)).Error("house_id must be a valid number")),
		validation.Field(&in.Importe, validation.NotNil.Error("Importe must be greater than 0"), validation.By(positive)),
	)
	if err != nil {
		return nil, util.ValidationError(err, "")
	}
	importe := in.Importe.Round(2)
	if !importe.IsPositive() {
		return nil, ErrInvalidImporte
	}

	var paymentID int64
	err = s.repo.InTx(ctx, func(tx *Repository) error {
		house, err := tx.LockHouse(ctx, *in.HouseID)
		if err != nil {
			return err
		}
		paymentID, err = tx.InsertPayment(ctx, house, importe, cobradorID)
		if err != nil {
			return err
		}
		return tx.DeleteHouse(ctx, house.HouseID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrHouseNotFound
		}
		return nil, err
	}

	log.Info().Int64("payment_id", paymentID).Int64("house_id", *in.HouseID).Int64("cobrador_id", cobradorID).Msg("cobrança registrada")
	return s.Get(ctx, paymentID)
}

// Get busca um pagamento.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

// List devolve todos os pagamentos.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx, Filter{})
}

// BySubdivision devolve os pagamentos de um fraccionamiento.
func (s *Service) BySubdivision(ctx context.Context, subdivisionID int64) ([]Payment, error) {
	return s.repo.List(ctx, Filter{SubdivisionID: &subdivisionID})
}

// ByCobrador devolve os pagamentos registrados por um cobrador.
func (s *Service) ByCobrador(ctx context.Context, cobradorID int64) ([]Payment, error) {
	return s.repo.List(ctx, Filter{CobradorID: &cobradorID})
}
