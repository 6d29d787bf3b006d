package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/billing"
	"github.com/japama/watercontract/internal/catalog"
	"github.com/japama/watercontract/internal/config"
	"github.com/japama/watercontract/internal/export"
	httpmiddleware "github.com/japama/watercontract/internal/http/middleware"
	"github.com/japama/watercontract/internal/inspection"
	"github.com/japama/watercontract/internal/metrics"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
	"github.com/japama/watercontract/internal/storage"
	"github.com/japama/watercontract/internal/verification"
)

// AuthAPI cobre cadastro, verificação, sessão e passkeys.
type AuthAPI interface {
	httpmiddleware.Authenticator
	Mode() verification.Mode
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	VerifyEmailToken(ctx context.Context, token string) (service.UserProfile, error)
	VerifyCode(ctx context.Context, email, code string) (service.UserProfile, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	LoginWithUser(ctx context.Context, user repo.User) (*service.LoginResult, error)
	Logout(ctx context.Context, claims *auth.SessionClaims) error
	Me(ctx context.Context, userID int64) (service.UserProfile, error)
	GetUserByID(ctx context.Context, id int64) (repo.User, error)
	GetUserByEmail(ctx context.Context, email string) (repo.User, error)
	ListPasskeys(ctx context.Context, userID int64) ([]repo.Passkey, error)
	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.Passkey, error)
	CreatePasskey(ctx context.Context, arg repo.CreatePasskeyParams) (repo.Passkey, error)
	UpdatePasskeyCounter(ctx context.Context, id uuid.UUID, signCount uint32, cloned bool) error
}

// UsersAPI cobre consulta e edição de perfis.
type UsersAPI interface {
	List(ctx context.Context) ([]service.UserProfile, error)
	Get(ctx context.Context, id int64) (service.UserProfile, error)
	UpdateProfile(ctx context.Context, id int64, in service.ProfileInput) (service.UserProfile, error)
}

// CatalogAPI cobre fraccionamientos, calles e casas.
type CatalogAPI interface {
	CreateSubdivision(ctx context.Context, name string) (*catalog.Subdivision, error)
	ListSubdivisions(ctx context.Context) ([]catalog.Subdivision, error)
	GetSubdivision(ctx context.Context, id int64) (*catalog.Subdivision, error)
	RenameSubdivision(ctx context.Context, id int64, name string) (*catalog.Subdivision, error)
	DeleteSubdivision(ctx context.Context, id int64) error
	SubdivisionHouses(ctx context.Context, id int64) ([]catalog.House, error)
	CreateStreet(ctx context.Context, in catalog.StreetInput) (*catalog.Street, error)
	ListStreets(ctx context.Context, subdivisionID *int64) ([]catalog.Street, error)
	GetStreet(ctx context.Context, id int64) (*catalog.Street, error)
	UpdateStreet(ctx context.Context, id int64, in catalog.StreetInput) (*catalog.Street, error)
	StreetHouses(ctx context.Context, id int64) ([]catalog.House, error)
	CreateHouse(ctx context.Context, in catalog.HouseInput) (*catalog.House, error)
	ListHouses(ctx context.Context) ([]catalog.House, error)
	GetHouse(ctx context.Context, id int64) (*catalog.House, error)
	UpdateHouse(ctx context.Context, id int64, in catalog.HouseInput) (*catalog.House, error)
	DeleteHouse(ctx context.Context, id int64) error
}

// ReportsAPI cobre os reportes de inspeção.
type ReportsAPI interface {
	Create(ctx context.Context, in inspection.ReportInput) (*inspection.Report, error)
	List(ctx context.Context) ([]inspection.Report, error)
	ByHouse(ctx context.Context, houseID int64) ([]inspection.Report, error)
	Get(ctx context.Context, id int64) (*inspection.Report, error)
	Update(ctx context.Context, id int64, in inspection.ReportInput) (*inspection.Report, error)
	Delete(ctx context.Context, id int64) error
}

// PaymentsAPI cobre a cobrança.
type PaymentsAPI interface {
	Collect(ctx context.Context, in billing.CollectInput, cobradorID int64) (*billing.Payment, error)
	List(ctx context.Context) ([]billing.Payment, error)
	Get(ctx context.Context, id int64) (*billing.Payment, error)
	BySubdivision(ctx context.Context, subdivisionID int64) ([]billing.Payment, error)
	ByCobrador(ctx context.Context, cobradorID int64) ([]billing.Payment, error)
}

// ExportsAPI cobre os relatórios PDF/Excel.
type ExportsAPI interface {
	SubdivisionPDF(ctx context.Context, id int64) (*export.Document, error)
	AllSubdivisionsPDF(ctx context.Context) (*export.Document, error)
	PadronPDF(ctx context.Context) (*export.Document, error)
	SubdivisionExcel(ctx context.Context, id int64) (*export.Document, error)
	AllSubdivisionsExcel(ctx context.Context) (*export.Document, error)
	Archive(ctx context.Context, doc *export.Document) (*storage.UploadResult, error)
}

// CeremonyStore guarda o estado das cerimônias WebAuthn.
type CeremonyStore interface {
	StoreCeremony(ctx context.Context, prefix, sessionID string, data *webauthn.SessionData, userID int64) error
	ConsumeCeremony(ctx context.Context, prefix, sessionID string) (*webauthn.SessionData, int64, error)
}

// Check verifica uma dependência no /ready.
type Check func(ctx context.Context) error

// Deps reúne tudo que o roteador expõe.
type Deps struct {
	Config     *config.Config
	Auth       AuthAPI
	Users      UsersAPI
	Catalog    CatalogAPI
	Reports    ReportsAPI
	Payments   PaymentsAPI
	Exports    ExportsAPI
	Ceremonies CeremonyStore
	WebAuthn   *webauthn.WebAuthn
	Metrics    *metrics.Recorder
	Checks     map[string]Check
}

// Handler concentra os handlers HTTP.
type Handler struct {
	cfg           *config.Config
	auth          AuthAPI
	users         UsersAPI
	catalog       CatalogAPI
	reports       ReportsAPI
	payments      PaymentsAPI
	exports       ExportsAPI
	ceremonies    CeremonyStore
	webauthn      *webauthn.WebAuthn
	checks        map[string]Check
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config
	wa := d.WebAuthn
	if wa == nil {
		var err error
		wa, err = webauthn.New(&webauthn.Config{
			RPDisplayName: cfg.WebAuthnRPName,
			RPID:          cfg.WebAuthnRPID,
			RPOrigins:     []string{cfg.WebAuthnRPOrigin},
		})
		if err != nil {
			return nil, fmt.Errorf("webauthn: %w", err)
		}
	}

	h := &Handler{
		cfg:           cfg,
		auth:          d.Auth,
		users:         d.Users,
		catalog:       d.Catalog,
		reports:       d.Reports,
		payments:      d.Payments,
		exports:       d.Exports,
		ceremonies:    d.Ceremonies,
		webauthn:      wa,
		checks:        d.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	if d.Metrics != nil {
		r.Use(httpmiddleware.Metrics(d.Metrics))
	}
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

			public.Post("/auth/login", h.Login)
			public.Get("/auth/verify-email", h.VerifyEmail)
			public.Post("/auth/verify-code", h.VerifyCode)
			public.Post("/auth/resend-verification", h.ResendVerification)
			public.Post("/auth/passkey/login/start", h.PasskeyLoginStart)
			public.Post("/auth/passkey/login/finish", h.PasskeyLoginFinish)
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(h.auth))
			private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
			h.mountPrivate(private)
		})
	})

	return r, nil
}

func (h *Handler) mountPrivate(r chi.Router) {
	var (
		admin        = httpmiddleware.AuthorizedRoles(repo.RoleAdmin)
		inspector    = httpmiddleware.AuthorizedRoles(repo.RoleInspector)
		staff        = httpmiddleware.AuthorizedRoles(repo.RoleAdmin, repo.RoleInspector, repo.RoleCobrador)
		collectors   = httpmiddleware.AuthorizedRoles(repo.RoleAdmin, repo.RoleCobrador)
		spreadsheets = httpmiddleware.AuthorizedRoles(repo.RoleAdmin, repo.RoleInspector)
	)

	r.Get("/auth/me", h.Me)
	r.Post("/auth/logout", h.Logout)
	r.With(admin).Post("/auth/register", h.Register)
	r.Post("/auth/passkey/register/start", h.PasskeyRegisterStart)
	r.Post("/auth/passkey/register/finish", h.PasskeyRegisterFinish)

	r.Get("/users/me", h.Me)
	r.Route("/users", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
	})

	r.Route("/subdivisions", func(r chi.Router) {
		r.With(staff).Post("/", h.CreateSubdivision)
		r.With(staff).Get("/", h.ListSubdivisions)
		r.With(staff).Get("/{id}", h.GetSubdivision)
		r.With(staff).Patch("/{id}", h.RenameSubdivision)
		r.With(collectors).Delete("/{id}", h.DeleteSubdivision)
		r.Get("/{id}/houses", h.SubdivisionHouses)
		r.With(collectors).Get("/{id}/payments", h.SubdivisionPayments)
		r.With(collectors).Get("/{id}/pdf", h.SubdivisionPDF)
		r.With(spreadsheets).Get("/{id}/excel", h.SubdivisionExcel)
	})
	r.Get("/subdivisions-all/pdf", h.AllSubdivisionsPDF)
	r.With(spreadsheets).Get("/subdivisions-all/excel", h.AllSubdivisionsExcel)
	r.With(staff).Get("/subdivisions-padron/pdf", h.PadronPDF)

	r.Route("/street", func(r chi.Router) {
		r.With(inspector).Post("/", h.CreateStreet)
		r.Get("/", h.ListStreets)
		r.Get("/{id}", h.GetStreet)
		r.Patch("/{id}", h.UpdateStreet)
		r.Get("/{id}/houses", h.StreetHouses)
	})

	r.Route("/houses", func(r chi.Router) {
		r.Post("/", h.CreateHouse)
		r.Get("/", h.ListHouses)
		r.Get("/{id}", h.GetHouse)
		r.Patch("/{id}", h.UpdateHouse)
		r.Delete("/{id}", h.DeleteHouse)
		r.Get("/{id}/reports", h.HouseReports)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Post("/", h.CreateReport)
		r.Get("/", h.ListReports)
		r.Get("/{id}", h.GetReport)
		r.Patch("/{id}", h.UpdateReport)
		r.Delete("/{id}", h.DeleteReport)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Use(collectors)
		r.Post("/", h.CollectPayment)
		r.Get("/", h.ListPayments)
		r.Get("/{id}", h.GetPayment)
	})
	r.With(collectors).Get("/cobradores/{id}/payments", h.CobradorPayments)
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]any{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependencies unavailable", failed)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
