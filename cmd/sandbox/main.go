package main // Entry point of the local scheduling API

import (
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/app"
	"github.com/mazenolama/Aljabr-Task/internal/config"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
)

func main() {
	cfg := config.LoadSandbox()
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	store := sandbox.NewStore(cfg.BcryptCost)
	users, err := sandbox.Seed(store,
		sandbox.Account{Name: "Administrator", Email: cfg.AdminEmail, Password: cfg.AdminPassword, Role: model.RoleAdmin},
		sandbox.Account{Name: "Demo User", Email: cfg.UserEmail, Password: cfg.UserPassword, Role: model.RoleUser},
	)
	if err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}
	for _, u := range users {
		logger.Info("seeded account", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	}

	e := app.NewSandboxServer(sandbox.NewAPIHandler(store, cfg.JWTSecret, cfg.TokenTTL, logger.Named("sandbox")))
	addr := ":" + cfg.Port
	logger.Info("sandbox scheduling API listening", zap.String("addr", addr), zap.String("base", "/api"))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
