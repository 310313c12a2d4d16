package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	domainaddress "todo-server-go/internal/domain/address"
	domainauth "todo-server-go/internal/domain/auth"
	domaintodo "todo-server-go/internal/domain/todo"
	domainuser "todo-server-go/internal/domain/user"
	platformconfig "todo-server-go/internal/platform/config"
	platformerrors "todo-server-go/internal/platform/errors"
	platformlogging "todo-server-go/internal/platform/logging"
	platformstorage "todo-server-go/internal/platform/storage"
	httptransport "todo-server-go/internal/transport/http"
	httpapi "todo-server-go/internal/transport/http/api"
	httpweb "todo-server-go/internal/transport/http/web"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	db         *gorm.DB

	users     *platformstorage.UserRepository
	todos     *platformstorage.TodoRepository
	addresses *platformstorage.AddressRepository

	authenticator  *domainauth.Authenticator
	bearerResolver *domainauth.BearerResolver
	cookieResolver *domainauth.CookieResolver
	hasher         *domainauth.PasswordHasher

	todoService    *domaintodo.Service
	userService    *domainuser.Service
	addressService *domainaddress.Service
}

// Run starts the whole service lifecycle: configuration, logging,
// storage, the auth stack, domain services and the HTTP server, then
// blocks until a shutdown signal arrives.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	logger := state.logger
	logBootstrapGraph(InitGraph(), logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "server stopped cleanly")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap, "execute init steps", "nil bootstrap state")
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap, step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep))
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap, step.ID, "missing execute function")
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}
			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:open",
			Title:     "Open database",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   openStorageStep,
		},
		{
			ID:        "auth:init",
			Title:     "Initialise auth stack",
			DependsOn: []string{"storage:open"},
			Kind:      platformerrors.KindAuth,
			Execute:   initAuthStep,
		},
		{
			ID:        "domain:init",
			Title:     "Initialise domain services",
			DependsOn: []string{"auth:init"},
			Kind:      platformerrors.KindDomain,
			Execute:   initDomainStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap, "logging:init", "config not loaded")
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}
	state.logger = logger

	origin := state.configPath
	if origin == "" {
		origin = "defaults"
	}
	logger.InfoTag("BOOT", "logging ready [%s] config from %s", state.config.Log.Level, origin)
	return nil
}

func openStorageStep(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Database.DSN)
	if err != nil {
		return err
	}
	state.db = db
	state.users = platformstorage.NewUserRepository(db)
	state.todos = platformstorage.NewTodoRepository(db)
	state.addresses = platformstorage.NewAddressRepository(db)

	state.logger.InfoTag("BOOT", "database ready at %s", state.config.Database.DSN)
	return nil
}

func initAuthStep(_ context.Context, state *appState) error {
	authCfg := state.config.Server.Auth

	state.hasher = domainauth.NewPasswordHasher(authCfg.BcryptCost)

	codec, err := domainauth.NewTokenCodec(authCfg.SecretKey, authCfg.TokenTTL.Std())
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindAuth, "auth:init", "failed to create token codec", err)
	}

	authenticator, err := domainauth.NewAuthenticator(domainauth.Options{
		Credentials: state.users,
		Hasher:      state.hasher,
		Codec:       codec,
		TokenTTL:    authCfg.TokenTTL.Std(),
		Logger:      state.logger,
	})
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindAuth, "auth:init", "failed to create authenticator", err)
	}

	state.authenticator = authenticator
	state.bearerResolver = domainauth.NewBearerResolver(codec)
	state.cookieResolver = domainauth.NewCookieResolver(codec)
	return nil
}

func initDomainStep(_ context.Context, state *appState) error {
	state.todoService = domaintodo.NewService(state.todos)
	state.userService = domainuser.NewService(state.users, state.hasher)
	state.addressService = domainaddress.NewService(state.addresses, state.users)
	return nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "api not found", nil)
			return
		}
		if config.Web.Enabled {
			c.Redirect(http.StatusFound, "/todos")
			return
		}
		c.Status(http.StatusNotFound)
	})

	if err := registerAPIServices(state, httpRouter.API, groupCtx); err != nil {
		return nil, err
	}

	if config.Web.Enabled {
		if err := registerWebServices(state, httpRouter.Web, groupCtx); err != nil {
			return nil, err
		}
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/todos")
		})
	}

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on %s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func registerAPIServices(state *appState, group *gin.RouterGroup, ctx context.Context) error {
	logger := state.logger

	authSvc, err := httpapi.NewAuthService(state.authenticator, state.userService, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create auth service", err)
	}
	todoSvc, err := httpapi.NewTodoService(state.todoService, state.bearerResolver, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create todo service", err)
	}
	userSvc, err := httpapi.NewUserService(state.userService, state.bearerResolver, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create user service", err)
	}
	addressSvc, err := httpapi.NewAddressService(state.addressService, state.bearerResolver, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create address service", err)
	}
	companySvc, err := httpapi.NewCompanyService(state.config.Company, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create company service", err)
	}
	systemSvc, err := httpapi.NewSystemService(state.bearerResolver, state.users, state.todos, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-api", "failed to create system service", err)
	}

	for _, register := range []func(context.Context, *gin.RouterGroup) error{
		authSvc.Register,
		todoSvc.Register,
		userSvc.Register,
		addressSvc.Register,
		companySvc.Register,
		systemSvc.Register,
	} {
		if err := register(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

func registerWebServices(state *appState, group *gin.RouterGroup, ctx context.Context) error {
	logger := state.logger
	cookieName := state.config.Server.Auth.CookieName

	authPages, err := httpweb.NewAuthPages(
		state.authenticator, state.userService, state.config.Server.Auth, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-web", "failed to create auth pages", err)
	}
	todoPages, err := httpweb.NewTodoPages(
		state.todoService, state.cookieResolver, cookieName, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-web", "failed to create todo pages", err)
	}
	userPages, err := httpweb.NewUserPages(
		state.userService, state.cookieResolver, cookieName, logger)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindTransport, "http:register-web", "failed to create user pages", err)
	}

	for _, register := range []func(context.Context, *gin.RouterGroup) error{
		authPages.Register,
		todoPages.Register,
		userPages.Register,
	} {
		if err := register(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out, exiting")
		return errors.New("shutdown timed out")
	}
	return nil
}
