package app

import (
	"net/http"

	"booking-ledger-go/internal/config"
	"booking-ledger-go/internal/db"
	accessdomain "booking-ledger-go/internal/domain/access"
	ledgerdomain "booking-ledger-go/internal/domain/ledger"
	notificationsdomain "booking-ledger-go/internal/domain/notifications"
	userdomain "booking-ledger-go/internal/domain/user"
	"booking-ledger-go/internal/push"
	accessrepo "booking-ledger-go/internal/repository/postgres/access"
	ledgerrepo "booking-ledger-go/internal/repository/postgres/ledger"
	notificationsrepo "booking-ledger-go/internal/repository/postgres/notifications"
	userrepo "booking-ledger-go/internal/repository/postgres/user"
	"booking-ledger-go/internal/transport/httpserver"
	"booking-ledger-go/internal/transport/httpserver/handler"
	"booking-ledger-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	hub        *push.Hub
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg := config.Load(log)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	accessService := accessdomain.NewService(accessrepo.NewPostgres(dbConn))
	userService := userdomain.NewService(userrepo.NewPostgres(dbConn))

	hub := push.NewHub(cfg.Push, log)
	notificationService := notificationsdomain.NewService(
		notificationsrepo.NewPostgres(dbConn),
		accessService,
		hub,
		cfg.Push.Timeout,
		log,
	)

	ledgerService := ledgerdomain.NewService(
		ledgerrepo.NewPostgres(dbConn),
		accessService,
		notificationService,
		userService,
	)

	log.Info("app: initializing router")
	handlers := handler.New(accessService, ledgerService, notificationService, userService, hub, log)
	router := httpserver.NewRouter(cfg, handlers, userService, log)

	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		hub:        hub,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.hub != nil {
		_ = a.hub.Close()
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
