package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/memory"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/postgres"
	"github.com/YelzhanWeb/little-lemon/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/little-lemon/internal/app/account"
	"github.com/YelzhanWeb/little-lemon/internal/app/cart"
	"github.com/YelzhanWeb/little-lemon/internal/app/catalog"
	"github.com/YelzhanWeb/little-lemon/internal/app/order"
	"github.com/YelzhanWeb/little-lemon/internal/config"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/little-lemon/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/little-lemon/internal/adapter/http"
)

const (
	modeAPI          = "api"
	modeNotification = "notification-subscriber"
	modeMigrate      = "migrate"
	modeCreateAdmin  = "create-admin"

	shutdownTimeout = 10 * time.Second
)

type adminFlags struct {
	username string
	email    string
	password string
}

func main() {
	// Parse command-line flags
	mode := flag.String("mode", modeAPI, "Service mode: api, notification-subscriber, migrate, create-admin")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	var admin adminFlags
	flag.StringVar(&admin.username, "admin-username", "", "Admin username (create-admin, or bootstrap on api start)")
	flag.StringVar(&admin.email, "admin-email", "", "Admin email")
	flag.StringVar(&admin.password, "admin-password", "", "Admin password")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	lgr := logger.New(*mode, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case modeAPI:
		err = runAPI(ctx, cfg, lgr, admin)
	case modeNotification:
		err = runNotificationSubscriber(ctx, cfg, lgr)
	case modeMigrate:
		err = runMigrate(ctx, cfg, lgr)
	case modeCreateAdmin:
		err = runCreateAdmin(ctx, cfg, lgr, admin)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil {
		lgr.Error("service_failed", "Service stopped with error", "shutdown", map[string]interface{}{"mode": *mode}, err)
		os.Exit(1)
	}
}

// repositories is the storage the services run on, with its health probe
// and release function.
type repositories struct {
	categories interfaces.CategoryRepository
	menuItems  interfaces.MenuItemRepository
	cart       interfaces.CartRepository
	orders     interfaces.OrderRepository
	users      interfaces.UserRepository
	tokens     interfaces.TokenRepository
	pinger     interfaces.Pinger
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, lgr logger.Logger) (*repositories, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		store := memory.NewStore()
		lgr.Info("storage_ready", "Using in-memory storage", "startup", nil)
		return &repositories{
			categories: store.Categories(),
			menuItems:  store.MenuItems(),
			cart:       store.Cart(),
			orders:     store.Orders(),
			users:      store.Users(),
			tokens:     store.Tokens(),
			pinger:     store,
			close:      func() {},
		}, nil
	}

	db, err := connectPostgres(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db, lgr); err != nil {
		db.Close()
		return nil, err
	}

	repos := postgres.NewRepositories(db)
	return &repositories{
		categories: repos.Categories,
		menuItems:  repos.MenuItems,
		cart:       repos.Cart,
		orders:     repos.Orders,
		users:      repos.Users,
		tokens:     repos.Tokens,
		pinger:     db,
		close:      db.Close,
	}, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config, lgr logger.Logger) (postgres.DB, error) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})
	return db, nil
}

func connectRabbitMQ(cfg *config.Config, lgr logger.Logger) (rabbitmq.Connection, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host":     cfg.RabbitMQ.Host,
		"exchange": cfg.RabbitMQ.Exchange,
	})
	return conn, nil
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger, admin adminFlags) error {
	repos, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer repos.close()

	publisher := rabbitmq.NewNoopPublisher()
	if cfg.RabbitMQ.Enabled {
		conn, err := connectRabbitMQ(cfg, lgr)
		if err != nil {
			return err
		}
		defer conn.Close()
		publisher = rabbitmq.NewPublisher(conn, cfg.RabbitMQ.Exchange)
	}

	accounts := account.NewService(repos.users, repos.tokens, lgr, cfg.Auth.BcryptCost)
	if admin.username != "" {
		if _, err := accounts.EnsureAdmin(ctx, admin.command()); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	handler := httpAdapter.NewRouter(httpAdapter.Services{
		Catalog:  catalog.NewService(repos.categories, repos.menuItems, lgr),
		Cart:     cart.NewService(repos.cart, repos.menuItems, lgr),
		Orders:   order.NewService(repos.orders, repos.users, publisher, lgr),
		Accounts: accounts,
		Store:    repos.pinger,
	}, lgr, cfg.Server.RequestTimeout)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	lgr.Info("service_started", fmt.Sprintf("Little Lemon API started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":      cfg.Server.Port,
		"storage":   cfg.Storage.Driver,
		"messaging": cfg.RabbitMQ.Enabled,
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Little Lemon API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	conn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumer := rabbitmq.NewConsumer(conn, rabbitmq.ConsumerOptions{
		Exchange: cfg.RabbitMQ.Exchange,
		Queue:    cfg.RabbitMQ.NotificationQueue,
		Prefetch: cfg.RabbitMQ.Prefetch,
	}, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"queue": cfg.RabbitMQ.NotificationQueue,
	})

	err = consumer.ConsumeOrderEvents(ctx, notificationHandler.HandleNotification)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := connectPostgres(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer db.Close()

	return postgres.RunMigrations(ctx, db, lgr)
}

func runCreateAdmin(ctx context.Context, cfg *config.Config, lgr logger.Logger, admin adminFlags) error {
	if cfg.Storage.Driver == config.DriverMemory {
		return errors.New("create-admin needs persistent storage; use --admin-username with --mode api for the memory driver")
	}
	if admin.username == "" || admin.password == "" {
		return errors.New("--admin-username and --admin-password are required")
	}

	repos, err := openStorage(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer repos.close()

	accounts := account.NewService(repos.users, repos.tokens, lgr, cfg.Auth.BcryptCost)
	user, err := accounts.EnsureAdmin(ctx, admin.command())
	if err != nil {
		return err
	}

	lgr.Info("admin_ready", "Admin account ready", "startup", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (a adminFlags) command() interfaces.RegisterCommand {
	return interfaces.RegisterCommand{
		Username: a.username,
		Email:    a.email,
		Password: a.password,
	}
}
