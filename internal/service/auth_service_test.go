package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japama/watercontract/internal/apperr"
	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/mail"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/verification"
)

type memState struct {
	users    map[int64]repo.User
	codes    []repo.VerificationCode
	passkeys []repo.Passkey
	nextID   int64
}

func (s memState) clone() memState {
	users := make(map[int64]repo.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return memState{
		users:    users,
		codes:    append([]repo.VerificationCode(nil), s.codes...),
		passkeys: append([]repo.Passkey(nil), s.passkeys...),
		nextID:   s.nextID,
	}
}

// memStore imita o banco; InTx descarta alterações quando fn falha.
type memStore struct {
	mu sync.Mutex
	memState
	failLookup error
}

func newMemStore() *memStore {
	return &memStore{memState: memState{users: map[int64]repo.User{}}}
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (repo.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (repo.User, error) {
	if m.failLookup != nil {
		return repo.User{}, m.failLookup
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (repo.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memStore) ListUsers(ctx context.Context) ([]repo.User, error) {
	out := make([]repo.User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) CreateUser(ctx context.Context, arg repo.CreateUserParams) (repo.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, arg.Email) {
			return repo.User{}, repo.ErrDuplicateEmail
		}
		if u.Username == arg.Username {
			return repo.User{}, repo.ErrDuplicateUsername
		}
	}
	m.nextID++
	now := time.Now().UTC()
	u := repo.User{
		ID:           m.nextID,
		Name:         arg.Name,
		Lastname:     arg.Lastname,
		Email:        arg.Email,
		Username:     arg.Username,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		IsVerified:   arg.IsVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) UpdateUserProfile(ctx context.Context, id int64, arg repo.UpdateProfileParams) (repo.User, error) {
	u, ok := m.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	if arg.Name != nil {
		u.Name = *arg.Name
	}
	if arg.Lastname != nil {
		u.Lastname = *arg.Lastname
	}
	if arg.Username != nil {
		u.Username = *arg.Username
	}
	m.users[id] = u
	return u, nil
}

func (m *memStore) MarkUserVerified(ctx context.Context, id int64) (bool, error) {
	u, ok := m.users[id]
	if !ok || u.IsVerified {
		return false, nil
	}
	u.IsVerified = true
	m.users[id] = u
	return true, nil
}

func (m *memStore) DeleteVerificationCodes(ctx context.Context, userID int64) (int64, error) {
	var kept []repo.VerificationCode
	var n int64
	for _, c := range m.codes {
		if c.UserID == userID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.codes = kept
	return n, nil
}

func (m *memStore) InsertVerificationCode(ctx context.Context, userID int64, code string, expiresAt time.Time) (repo.VerificationCode, error) {
	vc := repo.VerificationCode{ID: int64(len(m.codes) + 1), UserID: userID, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	m.codes = append(m.codes, vc)
	return vc, nil
}

func (m *memStore) ConsumeVerificationCode(ctx context.Context, userID int64, code string, now time.Time) (repo.VerificationCode, error) {
	for i, c := range m.codes {
		if c.UserID == userID && c.Code == code && c.ExpiresAt.After(now) {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			return c, nil
		}
	}
	return repo.VerificationCode{}, repo.ErrNotFound
}

func (m *memStore) ListPasskeys(ctx context.Context, userID int64) ([]repo.Passkey, error) {
	var out []repo.Passkey
	for _, p := range m.passkeys {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.Passkey, error) {
	for _, p := range m.passkeys {
		if string(p.CredentialID) == string(credentialID) {
			return p, nil
		}
	}
	return repo.Passkey{}, repo.ErrNotFound
}

func (m *memStore) CreatePasskey(ctx context.Context, arg repo.CreatePasskeyParams) (repo.Passkey, error) {
	p := repo.Passkey{ID: uuid.New(), UserID: arg.UserID, CredentialID: arg.CredentialID, PublicKey: arg.PublicKey, SignCount: arg.SignCount, CreatedAt: time.Now()}
	m.passkeys = append(m.passkeys, p)
	return p, nil
}

func (m *memStore) UpdatePasskeyCounter(ctx context.Context, id uuid.UUID, signCount uint32, cloned bool) error {
	for i, p := range m.passkeys {
		if p.ID == id {
			m.passkeys[i].SignCount = signCount
			m.passkeys[i].Cloned = cloned
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) InTx(ctx context.Context, fn func(authStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.memState.clone()
	if err := fn(m); err != nil {
		m.memState = snapshot
		return err
	}
	return nil
}

type fakeMailer struct {
	sent []mail.Message
	fail error
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, msg)
	return nil
}

type countingEvents map[string]int

func (c countingEvents) AuthEvent(event string) { c[event]++ }

type fixture struct {
	svc    *AuthService
	store  *memStore
	mailer *fakeMailer
	events countingEvents
	redis  *miniredis.Miniredis
}

func newFixture(t *testing.T, cfg AuthConfig) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwtMgr := auth.NewJWTManager(strings.Repeat("s", 32), 7*24*time.Hour, 24*time.Hour)
	hasher, err := auth.NewPasswordHasher(auth.AlgorithmBcrypt, 4)
	require.NoError(t, err)
	if cfg.ResendCooldown == 0 {
		cfg.ResendCooldown = time.Minute
	}

	f := &fixture{
		store:  newMemStore(),
		mailer: &fakeMailer{},
		events: countingEvents{},
		redis:  mr,
	}
	f.svc = &AuthService{
		store:    f.store,
		sessions: NewSessionStore(client),
		jwt:      jwtMgr,
		hasher:   hasher,
		codes:    verification.NewCodeIssuer(10 * time.Minute),
		links:    verification.NewLinkIssuer(jwtMgr, "http://localhost:3000"),
		mailer:   f.mailer,
		events:   f.events,
		cfg:      cfg,
		async:    func(fn func()) { fn() },
		log:      zerolog.Nop(),
	}
	return f
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     "Ana",
		Lastname: "López",
		Email:    "Ana@Japama.gob.mx ",
		Username: "alopez",
		Password: "secreta1",
		Role:     "inspector",
	}
}

var codeInMail = regexp.MustCompile(`>([0-9]{6})<`)

func tokenFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()
	m := regexp.MustCompile(`href="([^"]+)"`).FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "link ausente no e-mail")
	u, err := url.Parse(strings.ReplaceAll(m[1], "&amp;", "&"))
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRegisterLinkMode(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "link", res.Verification)
	assert.Equal(t, "ana@japama.gob.mx", res.User.Email)
	assert.Equal(t, repo.StatePendingVerification, res.User.State)
	assert.False(t, res.User.IsVerified)

	stored := f.store.users[res.User.ID]
	assert.NotEqual(t, "secreta1", stored.PasswordHash)

	require.Len(t, f.mailer.sent, 1)
	token := tokenFromMail(t, f.mailer.sent[0])
	require.NotEmpty(t, token)

	profile, err := f.svc.VerifyEmailToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
	assert.Equal(t, repo.StateVerified, profile.State)

	_, err = f.svc.VerifyEmailToken(ctx, token)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	assert.Equal(t, 1, f.events["verify"])
}

func TestRegisterLinkModeSurvivesMailFailure(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	f.mailer.fail = errors.New("smtp down")

	res, err := f.svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Contains(t, f.store.users, res.User.ID)
}

type gatedMailer struct {
	release chan struct{}
	sent    atomic.Int32
}

func (g *gatedMailer) Send(ctx context.Context, msg mail.Message) error {
	<-g.release
	g.sent.Add(1)
	return nil
}

func TestDrainWaitsForPendingLinkMail(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()
	gate := &gatedMailer{release: make(chan struct{})}
	f.svc.mailer = gate
	f.svc.async = func(fn func()) { go fn() }

	require.NoError(t, f.svc.Drain(ctx), "sem envios pendentes")

	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.svc.Drain(short), context.DeadlineExceeded)
	assert.Zero(t, gate.sent.Load())

	close(gate.release)
	require.NoError(t, f.svc.Drain(ctx))
	assert.EqualValues(t, 1, gate.sent.Load())
}

func TestRegisterCodeMode(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeCode})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "code", res.Verification)

	require.Len(t, f.mailer.sent, 1)
	m := codeInMail.FindStringSubmatch(f.mailer.sent[0].HTML)
	require.Len(t, m, 2)
	code := m[1]
	require.Len(t, f.store.codes, 1)
	assert.Equal(t, code, f.store.codes[0].Code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.svc.VerifyCode(ctx, "ana@japama.gob.mx", wrong)
	assert.ErrorIs(t, err, verification.ErrInvalidCode)
	assert.False(t, f.store.users[res.User.ID].IsVerified)

	profile, err := f.svc.VerifyCode(ctx, "ANA@japama.gob.mx", code)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
	assert.Empty(t, f.store.codes)

	_, err = f.svc.VerifyCode(ctx, "ana@japama.gob.mx", code)
	assert.ErrorIs(t, err, verification.ErrInvalidCode, "código já resgatado não pode ser reutilizado")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 1, f.events["verify"])
}

func TestRegisterCodeModeRollsBackOnDeliveryFailure(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeCode})
	f.mailer.fail = mail.ErrDeliveryFailure

	_, err := f.svc.Register(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
	assert.Empty(t, f.store.users)
	assert.Empty(t, f.store.codes)
}

func TestRegisterAutoVerified(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeCode, AutoVerifyProvisioned: true})

	res, err := f.svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "none", res.Verification)
	assert.True(t, res.User.IsVerified)
	assert.Empty(t, f.mailer.sent)
}

func TestRegisterDuplicates(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()
	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Username = "otro"
	_, err = f.svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	in = validInput()
	in.Email = "otra@japama.gob.mx"
	_, err = f.svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Len(t, f.store.users, 1)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})

	cases := map[string]func(*RegisterInput){
		"email":    func(in *RegisterInput) { in.Email = "sin-arroba" },
		"password": func(in *RegisterInput) { in.Password = "12345" },
		"role":     func(in *RegisterInput) { in.Role = "root" },
		"name":     func(in *RegisterInput) { in.Name = "  " },
	}
	for field, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := f.svc.Register(context.Background(), in)
		require.Error(t, err, field)

		appErr, ok := apperr.As(err)
		require.True(t, ok, field)
		assert.Equal(t, apperr.KindValidation, appErr.Kind, field)
		assert.Contains(t, appErr.Details, field)
	}
	assert.Empty(t, f.store.users)
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})

	in := validInput()
	in.Password = strings.Repeat("x", 80)
	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "Password must be at most 72 bytes long", appErr.Details["password"])
	assert.Empty(t, f.store.users)
	assert.Empty(t, f.mailer.sent)
}

func TestVerifyWrongModeIsDisabled(t *testing.T) {
	link := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	_, err := link.svc.VerifyCode(context.Background(), "a@b.mx", "123456")
	assert.ErrorIs(t, err, ErrModeDisabled)

	code := newFixture(t, AuthConfig{Mode: verification.ModeCode})
	_, err = code.svc.VerifyEmailToken(context.Background(), "whatever")
	assert.ErrorIs(t, err, ErrModeDisabled)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestVerifyEmailTokenErrors(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})

	_, err := f.svc.VerifyEmailToken(context.Background(), "")
	assert.ErrorIs(t, err, verification.ErrTokenRequired)

	_, err = f.svc.VerifyEmailToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, verification.ErrTokenInvalid)

	token, _, err := f.svc.jwt.IssueVerification(99, "ghost@japama.gob.mx")
	require.NoError(t, err)
	_, err = f.svc.VerifyEmailToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyEmailTokenRejectsChangedEmail(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	require.Len(t, f.mailer.sent, 1)
	token := tokenFromMail(t, f.mailer.sent[0])

	u := f.store.users[res.User.ID]
	u.Email = "nueva@japama.gob.mx"
	f.store.users[res.User.ID] = u

	_, err = f.svc.VerifyEmailToken(ctx, token)
	assert.ErrorIs(t, err, verification.ErrEmailMismatch)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.False(t, f.store.users[res.User.ID].IsVerified)
	assert.Zero(t, f.events["verify"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "ana@japama.gob.mx", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, unknownErr := f.svc.Login(ctx, "nadie@japama.gob.mx", "secreta1")
	_, wrongErr := f.svc.Login(ctx, "ana@japama.gob.mx", "errada")
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	_, err = f.svc.Login(ctx, "ana@japama.gob.mx", "secreta1")
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = f.store.MarkUserVerified(ctx, res.User.ID)
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, " ANA@japama.gob.mx", "secreta1")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), login.ExpiresAt, time.Minute)
	assert.Equal(t, 1, f.events["login_ok"])
	assert.Equal(t, 3, f.events["login_fail"])
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink, AutoVerifyProvisioned: true})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	login, err := f.svc.Login(ctx, "ana@japama.gob.mx", "secreta1")
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "inspector", claims.Role)

	me, err := f.svc.Me(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alopez", me.Username)

	require.NoError(t, f.svc.Logout(ctx, claims))
	assert.True(t, f.redis.Exists("session:revoked:"+claims.ID))

	_, err = f.svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = f.svc.Authenticate(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAuthenticateStoreUnavailable(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	token, _, err := f.svc.jwt.IssueSession(1, "admin")
	require.NoError(t, err)

	f.redis.Close()
	_, err = f.svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionStore)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeCode})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	first := f.store.codes[0].Code

	require.NoError(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"))
	require.Len(t, f.mailer.sent, 2)
	require.Len(t, f.store.codes, 1, "reenvio deve substituir o código anterior")
	if f.store.codes[0].Code != first {
		assert.ErrorIs(t, f.svc.codes.Redeem(ctx, f.store, res.User.ID, first), verification.ErrInvalidCode)
	}

	err = f.svc.ResendVerification(ctx, "ana@japama.gob.mx")
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Equal(t, apperr.KindRateLimit, apperr.KindOf(err))

	f.redis.FastForward(time.Minute + time.Second)
	require.NoError(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"))

	assert.ErrorIs(t, f.svc.ResendVerification(ctx, ""), ErrEmailRequired)
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "ghost@japama.gob.mx"), ErrUserNotFound)

	_, err = f.store.MarkUserVerified(ctx, res.User.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"), ErrAlreadyVerified)
}

func TestResendDeliveryFailureIsReported(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeLink})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	f.mailer.fail = errors.New("smtp down")
	err = f.svc.ResendVerification(ctx, "ana@japama.gob.mx")
	assert.ErrorIs(t, err, ErrDelivery)
	assert.False(t, f.redis.Exists("verification:resend:1"), "falha de envio não deve consumir a janela")

	f.mailer.fail = nil
	require.NoError(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"))
	assert.True(t, f.redis.Exists("verification:resend:1"))
	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"), ErrResendTooSoon)
	assert.Equal(t, 1, f.events["resend"])
}

func TestResendCodeDeliveryFailureReleasesCooldown(t *testing.T) {
	f := newFixture(t, AuthConfig{Mode: verification.ModeCode})
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	previous := f.store.codes[0].Code

	f.mailer.fail = mail.ErrDeliveryFailure
	err = f.svc.ResendVerification(ctx, "ana@japama.gob.mx")
	assert.ErrorIs(t, err, ErrDelivery)
	require.Len(t, f.store.codes, 1, "código anterior preservado pelo rollback")
	assert.Equal(t, previous, f.store.codes[0].Code)

	f.mailer.fail = nil
	require.NoError(t, f.svc.ResendVerification(ctx, "ana@japama.gob.mx"))
	assert.Equal(t, res.User.ID, f.store.codes[0].UserID)
}

func TestPermit(t *testing.T) {
	assert.NoError(t, Permit(repo.RoleAdmin, repo.RoleAdmin, repo.RoleCobrador))

	err := Permit(repo.RoleInspector, repo.RoleAdmin, repo.RoleCobrador)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuthorization, appErr.Kind)
	assert.Equal(t, []string{"admin", "cobrador"}, appErr.Details["required_roles"])
	assert.Equal(t, "inspector", appErr.Details["your_role"])
	assert.Nil(t, ErrForbidden.Details, "sentinela não deve ser alterado")
}

func TestUserServiceUpdateProfile(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	ana, err := store.CreateUser(ctx, repo.CreateUserParams{Name: "Ana", Email: "ana@japama.gob.mx", Username: "alopez", Role: repo.RoleInspector})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, repo.CreateUserParams{Name: "Beto", Email: "beto@japama.gob.mx", Username: "beto", Role: repo.RoleCobrador})
	require.NoError(t, err)

	svc := &UserService{store: store}

	_, err = svc.UpdateProfile(ctx, ana.ID, ProfileInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	taken := "beto"
	_, err = svc.UpdateProfile(ctx, ana.ID, ProfileInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	blank := "  "
	_, err = svc.UpdateProfile(ctx, ana.ID, ProfileInput{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	name, same := " Ana María ", "alopez"
	got, err := svc.UpdateProfile(ctx, ana.ID, ProfileInput{Name: &name, Username: &same})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
