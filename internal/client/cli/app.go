package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/evolveua/queuevault/internal/client/config"
	"github.com/evolveua/queuevault/internal/client/kvstore"
	"github.com/evolveua/queuevault/internal/client/relayclient"
	"github.com/evolveua/queuevault/internal/client/services"
	"github.com/evolveua/queuevault/internal/client/sessions"
	"github.com/evolveua/queuevault/internal/client/users"
	"github.com/evolveua/queuevault/internal/logging"
)

// authAPI is the slice of the auth service the CLI needs. The concrete
// services.AuthService satisfies it; tests provide a stub.
type authAPI interface {
	Register(ctx context.Context, p users.NewUserParams) (*users.User, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Logout(ctx context.Context, sess *services.Session) error
	SeedDemoAccount(ctx context.Context) error
}

type registrationAPI interface {
	Submit(ctx context.Context, sess *services.Session, event services.Event) (*services.Registration, error)
	List(ctx context.Context, sess *services.Session) ([]services.Registration, error)
	Stats(ctx context.Context, sess *services.Session) (*services.Stats, error)
}

type catalogAPI interface {
	Load(ctx context.Context) ([]services.Event, error)
}

type App struct {
	config  *config.Config
	auth    authAPI
	regs    registrationAPI
	catalog catalogAPI
	sess    *services.Session
	reader  *bufio.Reader
	closeFn func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.Default())

	db, err := kvstore.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}
	durable := kvstore.NewSQLiteStore(db)
	volatile := kvstore.NewMemStore()

	userRepo := users.NewRepository(durable)
	sessStore := sessions.NewStore(durable)
	auth := services.NewAuthService(userRepo, sessStore, volatile, logger)

	relay := relayclient.New(c.RelayURL, c.RelayRoute, c.AppSecret)
	regs := services.NewRegistrationService(durable, relay, logger)
	catalog := services.NewEventCatalog(durable, c.EventsFile)

	if err := auth.SeedDemoAccount(ctx); err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		auth:    auth,
		regs:    regs,
		catalog: catalog,
		reader:  bufio.NewReader(os.Stdin),
		closeFn: db.Close,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.sess != nil && len(a.sess.Key) > 0
}

func (a *App) Run(ctx context.Context) {
	if a.closeFn != nil {
		defer a.closeFn()
	}
	a.Root(ctx)
}
