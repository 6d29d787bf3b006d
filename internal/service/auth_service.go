package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/mail"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/util"
	"github.com/japama/watercontract/internal/verification"
)

const asyncMailTimeout = 30 * time.Second

type authStore interface {
	verification.CodeStore
	GetUserByID(ctx context.Context, id int64) (repo.User, error)
	GetUserByEmail(ctx context.Context, email string) (repo.User, error)
	GetUserByUsername(ctx context.Context, username string) (repo.User, error)
	CreateUser(ctx context.Context, arg repo.CreateUserParams) (repo.User, error)
	MarkUserVerified(ctx context.Context, id int64) (bool, error)
	ListPasskeys(ctx context.Context, userID int64) ([]repo.Passkey, error)
	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.Passkey, error)
	CreatePasskey(ctx context.Context, arg repo.CreatePasskeyParams) (repo.Passkey, error)
	UpdatePasskeyCounter(ctx context.Context, id uuid.UUID, signCount uint32, cloned bool) error
	InTx(ctx context.Context, fn func(authStore) error) error
}

// queriesStore adapta repo.Queries ao authStore.
type queriesStore struct {
	*repo.Queries
}

func (s queriesStore) InTx(ctx context.Context, fn func(authStore) error) error {
	return s.Queries.InTx(ctx, func(q *repo.Queries) error {
		return fn(queriesStore{q})
	})
}

// EventRecorder recebe eventos de autenticação para métricas.
type EventRecorder interface {
	AuthEvent(event string)
}

type noopEvents struct{}

func (noopEvents) AuthEvent(string) {}

// AuthConfig reúne a política de verificação da implantação.
type AuthConfig struct {
	Mode                  verification.Mode
	AutoVerifyProvisioned bool
	ResendCooldown        time.Duration
}

// AuthDeps agrupa colaboradores do AuthService.
type AuthDeps struct {
	Queries  *repo.Queries
	Sessions *SessionStore
	JWT      *auth.JWTManager
	Hasher   *auth.PasswordHasher
	Codes    *verification.CodeIssuer
	Links    *verification.LinkIssuer
	Mailer   mail.Sender
	Events   EventRecorder
}

// AuthService concentra cadastro, verificação de e-mail e sessões.
type AuthService struct {
	store    authStore
	sessions *SessionStore
	jwt      *auth.JWTManager
	hasher   *auth.PasswordHasher
	codes    *verification.CodeIssuer
	links    *verification.LinkIssuer
	mailer   mail.Sender
	events   EventRecorder
	cfg      AuthConfig
	async    func(func())
	log      zerolog.Logger

	pending sync.WaitGroup
}

// NewAuthService cria novo serviço.
func NewAuthService(deps AuthDeps, cfg AuthConfig) *AuthService {
	events := deps.Events
	if events == nil {
		events = noopEvents{}
	}
	return &AuthService{
		store:    queriesStore{deps.Queries},
		sessions: deps.Sessions,
		jwt:      deps.JWT,
		hasher:   deps.Hasher,
		codes:    deps.Codes,
		links:    deps.Links,
		mailer:   deps.Mailer,
		events:   events,
		cfg:      cfg,
		async:    func(fn func()) { go fn() },
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// JWT expõe gerenciador de JWT.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Sessions expõe o store efêmero (cerimônias WebAuthn).
func (s *AuthService) Sessions() *SessionStore {
	return s.sessions
}

// Mode informa a estratégia de verificação ativa.
func (s *AuthService) Mode() verification.Mode {
	return s.cfg.Mode
}

// RegisterInput descreve o cadastro feito por um administrador.
type RegisterInput struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (in RegisterInput) validate() error {
	roles := make([]interface{}, 0, len(repo.Roles))
	for _, r := range repo.Roles {
		roles = append(roles, string(r))
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, util.Required),
		validation.Field(&in.Lastname, util.Required),
		validation.Field(&in.Email, util.Required, util.Email),
		validation.Field(&in.Username, util.Required),
		validation.Field(&in.Password, util.Required, util.Password),
		validation.Field(&in.Role, util.Required, validation.In(roles...).Error("Invalid role. Must be one of: admin, inspector, cobrador")),
	)
}

// RegisterResult devolve o perfil criado e a estratégia de verificação aplicada.
type RegisterResult struct {
	User         UserProfile `json:"user"`
	Verification string      `json:"verification"`
}

// Register cria a conta em PendingVerification e emite o artefato de verificação.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Lastname = strings.TrimSpace(in.Lastname)
	in.Email = util.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := in.validate(); err != nil {
		return nil, util.ValidationError(err, "")
	}

	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	params := repo.CreateUserParams{
		Name:         in.Name,
		Lastname:     in.Lastname,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         repo.Role(in.Role),
		IsVerified:   s.cfg.AutoVerifyProvisioned,
	}

	var (
		user     repo.User
		strategy = string(s.cfg.Mode)
	)
	switch {
	case s.cfg.AutoVerifyProvisioned:
		strategy = "none"
		user, err = s.store.CreateUser(ctx, params)
	case s.cfg.Mode == verification.ModeCode:
		// Envio fatal: o usuário só é confirmado se o código chegou ao servidor SMTP.
		err = s.store.InTx(ctx, func(tx authStore) error {
			created, err := tx.CreateUser(ctx, params)
			if err != nil {
				return err
			}
			user = created
			return s.issueCode(ctx, tx, created)
		})
	default:
		user, err = s.store.CreateUser(ctx, params)
		if err == nil {
			s.issueLinkAsync(ctx, user)
		}
	}
	if err != nil {
		return nil, mapUserWriteError(err)
	}

	s.events.AuthEvent("register")
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Str("verification", strategy).Msg("usuário cadastrado")
	return &RegisterResult{User: NewUserProfile(user), Verification: strategy}, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return nil
}

func mapUserWriteError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repo.ErrDuplicateUsername):
		return ErrUsernameTaken
	default:
		return err
	}
}

func (s *AuthService) issueCode(ctx context.Context, store authStore, user repo.User) error {
	artifact, err := s.codes.Issue(ctx, store, user.ID)
	if err != nil {
		return err
	}
	msg, err := mail.VerificationCodeMessage(user.Email, user.Name, artifact.Code, s.codes.TTL())
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return ErrDelivery.Wrap(err)
	}
	return nil
}

func (s *AuthService) linkMessage(user repo.User) (mail.Message, error) {
	artifact, err := s.links.Issue(user)
	if err != nil {
		return mail.Message{}, err
	}
	return mail.VerificationLinkMessage(user.Email, user.Name, artifact.Link, time.Until(artifact.ExpiresAt).Round(time.Hour))
}

// issueLinkAsync envia o link fora do caminho da requisição; falhas só são registradas.
func (s *AuthService) issueLinkAsync(ctx context.Context, user repo.User) {
	msg, err := s.linkMessage(user)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("falha ao gerar link de verificação")
		return
	}
	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	s.async(func() {
		defer s.pending.Done()
		sendCtx, cancel := context.WithTimeout(detached, asyncMailTimeout)
		defer cancel()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			s.log.Error().Err(err).Int64("user_id", user.ID).Msg("falha ao enviar e-mail de verificação")
		}
	})
}

// Drain aguarda os envios de link pendentes ou o fim do ctx, o que vier antes.
func (s *AuthService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warn().Msg("desligamento com e-mails de verificação ainda em envio")
		return ctx.Err()
	}
}

// VerifyEmailToken resgata o token do link e promove a conta.
func (s *AuthService) VerifyEmailToken(ctx context.Context, token string) (UserProfile, error) {
	if s.cfg.Mode != verification.ModeLink {
		return UserProfile{}, ErrModeDisabled
	}
	userID, tokenEmail, err := s.links.Parse(token)
	if err != nil {
		return UserProfile{}, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return UserProfile{}, err
	}
	if err := verification.Matches(tokenEmail, user.Email); err != nil {
		return UserProfile{}, err
	}
	if user.IsVerified {
		return UserProfile{}, ErrAlreadyVerified
	}

	promoted, err := s.store.MarkUserVerified(ctx, user.ID)
	if err != nil {
		return UserProfile{}, err
	}
	if !promoted {
		return UserProfile{}, ErrAlreadyVerified
	}

	user.IsVerified = true
	s.events.AuthEvent("verify")
	return NewUserProfile(user), nil
}

// VerifyCode resgata o código e promove a conta na mesma transação.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (UserProfile, error) {
	if s.cfg.Mode != verification.ModeCode {
		return UserProfile{}, ErrModeDisabled
	}
	email = util.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return UserProfile{}, verification.ErrInvalidCode.WithDetails(map[string]any{"message": "Email and code are required"})
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserProfile{}, ErrUserNotFound
		}
		return UserProfile{}, err
	}

	// código consumido ou inexistente responde INVALID_CODE mesmo com a conta já verificada
	err = s.store.InTx(ctx, func(tx authStore) error {
		if err := s.codes.Redeem(ctx, tx, user.ID, code); err != nil {
			return err
		}
		promoted, err := tx.MarkUserVerified(ctx, user.ID)
		if err != nil {
			return err
		}
		if !promoted {
			return ErrAlreadyVerified
		}
		return nil
	})
	if err != nil {
		return UserProfile{}, err
	}

	user.IsVerified = true
	s.events.AuthEvent("verify")
	return NewUserProfile(user), nil
}

// ResendVerification emite novo artefato para conta ainda pendente.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	ok, err := s.sessions.AcquireResendSlot(ctx, user.ID, s.cfg.ResendCooldown)
	if err != nil {
		return ErrSessionStore.Wrap(err)
	}
	if !ok {
		return ErrResendTooSoon
	}

	if s.cfg.Mode == verification.ModeCode {
		err = s.store.InTx(ctx, func(tx authStore) error {
			return s.issueCode(ctx, tx, user)
		})
	} else {
		var msg mail.Message
		msg, err = s.linkMessage(user)
		if err == nil {
			if sendErr := s.mailer.Send(ctx, msg); sendErr != nil {
				err = ErrDelivery.Wrap(sendErr)
			}
		}
	}
	if err != nil {
		if relErr := s.sessions.ReleaseResendSlot(context.WithoutCancel(ctx), user.ID); relErr != nil {
			s.log.Error().Err(relErr).Int64("user_id", user.ID).Msg("falha ao liberar janela de reenvio")
		}
		return err
	}

	s.events.AuthEvent("resend")
	return nil
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserProfile `json:"user"`
}

// Login autentica por e-mail e senha. E-mail inexistente e senha incorreta
// produzem o mesmo erro; a verificação pendente só é revelada com senha correta.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = util.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			s.log.Warn().Msg("login: usuário não encontrado")
			s.events.AuthEvent("login_fail")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("login: verify password failed")
		s.events.AuthEvent("login_fail")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.log.Warn().Int64("user_id", user.ID).Msg("login: senha inválida")
		s.events.AuthEvent("login_fail")
		return nil, ErrInvalidCredentials
	}

	return s.LoginWithUser(ctx, user)
}

// LoginWithUser emite sessão para usuário já autenticado (senha ou passkey).
func (s *AuthService) LoginWithUser(ctx context.Context, user repo.User) (*LoginResult, error) {
	if !user.IsVerified {
		s.events.AuthEvent("login_fail")
		return nil, ErrNotVerified
	}

	token, claims, err := s.jwt.IssueSession(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.events.AuthEvent("login_ok")
	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      NewUserProfile(user),
	}, nil
}

// Authenticate valida o token de sessão e a denylist.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.SessionClaims, error) {
	claims, err := s.jwt.ParseSession(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, ErrSessionStore.Wrap(err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Logout revoga a sessão apresentada até sua expiração.
func (s *AuthService) Logout(ctx context.Context, claims *auth.SessionClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrSessionInvalid
	}
	if err := s.sessions.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return ErrSessionStore.Wrap(err)
	}
	return nil
}

// Me devolve o perfil do titular da sessão.
func (s *AuthService) Me(ctx context.Context, userID int64) (UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return UserProfile{}, err
	}
	return NewUserProfile(user), nil
}

func (s *AuthService) getUser(ctx context.Context, id int64) (repo.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.User{}, ErrUserNotFound
		}
		return repo.User{}, err
	}
	return user, nil
}

// GetUserByID carrega o registro completo (fluxos WebAuthn).
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (repo.User, error) {
	return s.getUser(ctx, id)
}

// GetUserByEmail carrega o registro completo (fluxos WebAuthn).
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (repo.User, error) {
	user, err := s.store.GetUserByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.User{}, ErrUserNotFound
		}
		return repo.User{}, err
	}
	return user, nil
}

func (s *AuthService) ListPasskeys(ctx context.Context, userID int64) ([]repo.Passkey, error) {
	return s.store.ListPasskeys(ctx, userID)
}

func (s *AuthService) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.Passkey, error) {
	return s.store.GetPasskeyByCredentialID(ctx, credentialID)
}

func (s *AuthService) CreatePasskey(ctx context.Context, arg repo.CreatePasskeyParams) (repo.Passkey, error) {
	return s.store.CreatePasskey(ctx, arg)
}

func (s *AuthService) UpdatePasskeyCounter(ctx context.Context, id uuid.UUID, signCount uint32, cloned bool) error {
	return s.store.UpdatePasskeyCounter(ctx, id, signCount, cloned)
}
