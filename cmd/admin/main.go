package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/japama/watercontract/internal/auth"
	"github.com/japama/watercontract/internal/db"
	"github.com/japama/watercontract/internal/repo"
	"github.com/japama/watercontract/internal/service"
	"github.com/japama/watercontract/internal/util"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	queries := repo.New(pool)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create-admin":
		if err := runCreateAdmin(ctx, queries, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	case "list":
		if err := runList(ctx, queries); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar usuários")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "admin CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  admin create-admin --name Ana --lastname Ruiz --email ana@japama.mx --username aruiz --password ******")
	fmt.Fprintln(os.Stderr, "  admin list")
}

type adminInput struct {
	Name     string
	Lastname string
	Email    string
	Username string
	Password string
}

func (in adminInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, util.Required),
		validation.Field(&in.Lastname, util.Required),
		validation.Field(&in.Email, util.Required, util.Email),
		validation.Field(&in.Username, util.Required),
		validation.Field(&in.Password, util.Required, util.Password),
	)
}

func newHasher() (*auth.PasswordHasher, error) {
	algorithm := strings.ToLower(strings.TrimSpace(os.Getenv("PASSWORD_HASH")))
	if algorithm == "" {
		algorithm = auth.AlgorithmBcrypt
	}
	cost := 10
	if raw := strings.TrimSpace(os.Getenv("BCRYPT_COST")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("BCRYPT_COST inválido: %w", err)
		}
		cost = v
	}
	return auth.NewPasswordHasher(algorithm, cost)
}

// O administrador inicial já nasce verificado.
func runCreateAdmin(ctx context.Context, queries *repo.Queries, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var in adminInput
	fs.StringVar(&in.Name, "name", "", "nome")
	fs.StringVar(&in.Lastname, "lastname", "", "sobrenome")
	fs.StringVar(&in.Email, "email", "", "e-mail de acesso")
	fs.StringVar(&in.Username, "username", "", "nome de usuário")
	fs.StringVar(&in.Password, "password", "", "senha (mínimo 6 caracteres)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Lastname = strings.TrimSpace(in.Lastname)
	in.Email = util.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := in.validate(); err != nil {
		return err
	}

	hasher, err := newHasher()
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	user, err := queries.CreateUser(ctx, repo.CreateUserParams{
		Name:         in.Name,
		Lastname:     in.Lastname,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         repo.RoleAdmin,
		IsVerified:   true,
	})
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail):
		return errors.New("e-mail já cadastrado")
	case errors.Is(err, repo.ErrDuplicateUsername):
		return errors.New("username já cadastrado")
	case err != nil:
		return err
	}

	output, _ := json.MarshalIndent(service.NewUserProfile(user), "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, queries *repo.Queries) error {
	users, err := queries.ListUsers(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("nenhum usuário cadastrado")
		return nil
	}

	profiles := make([]service.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, service.NewUserProfile(u))
	}
	encoded, _ := json.MarshalIndent(profiles, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
