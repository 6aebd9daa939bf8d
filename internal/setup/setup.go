package setup

import (
	"github.com/stackover-dev/stackover/internal/config"
	"github.com/stackover-dev/stackover/internal/handler"
	"github.com/stackover-dev/stackover/internal/jwt"
	"github.com/stackover-dev/stackover/internal/markdown"
	"github.com/stackover-dev/stackover/internal/middleware"
	"github.com/stackover-dev/stackover/internal/revocation"
	"github.com/stackover-dev/stackover/internal/service"
	"github.com/stackover-dev/stackover/internal/storage/pg"
	"github.com/stackover-dev/stackover/internal/utils/email"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Auth    *middleware.Auth
	Ledger  *revocation.Ledger
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	emailSender := email.New(&cfg.Private.Email)
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	ledger := revocation.New(storage, cfg.JwtTTL())

	authService := service.NewAuth(storage, emailSender, jwtService, ledger, cfg)
	questionService := service.NewQuestions(storage, markdown.New())

	h := handler.New(authService, questionService, cfg, storage)
	authMiddleware := middleware.NewAuth(jwtService, ledger, storage, cfg.Public.SecureCookies)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Auth:    authMiddleware,
		Ledger:  ledger,
	}, nil
}
