// Package bootstrap wires stores, services and transport together.
package bootstrap

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/attachment"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// multipart framing allowance on top of the attachment ceiling
const bodyOverhead = 1 << 20

// Services is the assembled application layer.
type Services struct {
	Tickets    *service.TicketService
	Queries    *service.TicketQueryService
	Categories *service.CategoryService
	Auth       *service.AuthService
	Accounts   *service.AccountService
	Activity   *service.TicketActivityService
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Repos      repository.Set
}

// NewServices builds every service over repos. redisClient may be nil.
func NewServices(cfg *config.Config, repos repository.Set, redisClient *redis.Client, logger *zap.Logger) *Services {
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	categories := service.NewCategoryService(repos.Categories, nil)
	queries := service.NewTicketQueryService(service.TicketQueryDependencies{
		TicketRepo:   repos.Tickets,
		CategoryRepo: repos.Categories,
		QueueCache:   cache.NewRedisQueueCache(redisClient, cfg.Ticket.QueueCacheTTL()),
		Logger:       logger,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.Tickets,
		Categories: categories,
		Validator:  attachment.NewValidator(cfg.Ticket.AttachmentMaxBytes),
		Dispatcher: dispatcher,
	})

	resolver := auth.NewResolver(
		auth.CustomerSource{Customers: repos.Customers},
		auth.StaffSource{Staff: repos.Staff},
	)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.App.Name)

	activity := service.NewTicketActivityService(dispatcher, logger, metrics, queries)
	worker.StartActivityWorker(activity)

	return &Services{
		Tickets:    tickets,
		Queries:    queries,
		Categories: categories,
		Auth:       service.NewAuthService(resolver, tokens, hasher),
		Accounts:   service.NewAccountService(repos.Customers, repos.Staff, hasher),
		Activity:   activity,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Repos:      repos,
	}
}

// NewHTTPServer builds the Fiber app. deps feed the readiness probe.
func NewHTTPServer(cfg *config.Config, svc *Services, logger *zap.Logger, deps ...handlers.Dependency) *fiber.App {
	authMiddleware := auth.NewAuthMiddleware(svc.Auth.TokenManager(), svc.Repos.Customers, svc.Repos.Staff)
	return httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		BodyLimit:      int(cfg.Ticket.AttachmentMaxBytes) + bodyOverhead,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        svc.Metrics,
	}, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, svc.Metrics, deps...),
		Auth:            handlers.NewAuthHandler(svc.Auth),
		Tickets:         handlers.NewTicketsHandler(svc.Tickets, svc.Queries),
		OperatorTickets: handlers.NewOperatorTicketsHandler(svc.Tickets, svc.Queries),
		Categories:      handlers.NewCategoriesHandler(svc.Categories),
		Users:           handlers.NewUsersHandler(svc.Accounts, svc.Auth),
		Staff:           handlers.NewStaffHandler(svc.Accounts),
		AuthMiddleware:  authMiddleware,
	})
}
