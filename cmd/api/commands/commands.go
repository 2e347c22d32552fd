package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/goleaf/api-todo-app/internal/adapters/cache"
	"github.com/goleaf/api-todo-app/internal/adapters/repository"
	"github.com/goleaf/api-todo-app/internal/application/services"
	"github.com/goleaf/api-todo-app/internal/domain/entities"
	"github.com/goleaf/api-todo-app/internal/domain/smarttag"
	"github.com/goleaf/api-todo-app/internal/infrastructure/config"
	"github.com/goleaf/api-todo-app/internal/infrastructure/database"
	"github.com/goleaf/api-todo-app/internal/infrastructure/logger"
	"github.com/goleaf/api-todo-app/internal/infrastructure/metrics"
	"github.com/goleaf/api-todo-app/internal/infrastructure/server"
	"github.com/goleaf/api-todo-app/internal/ports"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Todo API server",
		Long:  "Start the Todo API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}
	migrateCmd.PersistentFlags().String("path", "migrations", "Directory holding the migration files")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("path")
			runMigration(path, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("path")
			runMigration(path, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			path, _ := cmd.Flags().GetString("path")
			showMigrationVersion(path)
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create and manage users in the system",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			timezone, _ := cmd.Flags().GetString("timezone")

			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}

			createUser(ports.CreateUserRequest{
				Email:    email,
				Name:     name,
				Password: password,
				Role:     entities.UserRole(role),
				Timezone: timezone,
			})
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("name", "", "Display name")
	createUserCmd.Flags().String("role", string(entities.UserRoleMember), "User role (admin, member)")
	createUserCmd.Flags().String("timezone", "", "IANA timezone used for date based smart tags")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewSmartTagCommand creates tooling for smart tag definitions
func NewSmartTagCommand() *cobra.Command {
	smartTagCmd := &cobra.Command{
		Use:   "smarttag",
		Short: "Smart tag tooling",
	}

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Validate a criteria document and print the SQL it compiles to",
		Long:  "Reads smart tag criteria as JSON, reports every invalid field and prints the WHERE clause the query mode produces for the current time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			tz, _ := cmd.Flags().GetString("timezone")

			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("unknown timezone %q: %w", tz, err)
			}
			return explainCriteria(cmd, file, time.Now().In(loc))
		},
	}
	explainCmd.Flags().String("file", "-", "Criteria JSON file, - for stdin")
	explainCmd.Flags().String("timezone", "UTC", "Timezone that defines today")

	smartTagCmd.AddCommand(explainCmd)
	return smartTagCmd
}

// NewTokensCommand creates refresh token maintenance commands
func NewTokensCommand() *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token maintenance",
	}

	tokensCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired refresh tokens",
		Run: func(cmd *cobra.Command, args []string) {
			pruneTokens()
		},
	})

	return tokensCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Todo version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Todo API %s\n", Version)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		redisClient *redis.Client
		countsCache ports.CacheRepository
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatalw("Failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		countsCache = cache.NewRedisCache(redisClient)
	} else {
		appLogger.Infow("Redis disabled, caching smart tag counts in memory")
		countsCache = cache.NewMemoryCache()
	}

	srv, err := server.New(cfg, server.Deps{
		DB:      db,
		Redis:   redisClient,
		Cache:   countsCache,
		Metrics: metrics.New(),
	}, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting Todo API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}

func newMigrator(path string) (*migrate.Migrate, *database.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	return m, db
}

func runMigration(path, direction string) {
	m, db := newMigrator(path)
	defer db.Close()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
		return
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Printf("Migration %s completed successfully\n", direction)
}

func showMigrationVersion(path string) {
	m, db := newMigrator(path)
	defer db.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return
	}
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func createUser(req ports.CreateUserRequest) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	svc := services.NewUserService(repository.NewUserRepository(db.DB), logger.Nop())
	user, err := svc.CreateUser(context.Background(), req)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	if user.Timezone != "" {
		fmt.Printf("  Timezone: %s\n", user.Timezone)
	}
}

func pruneTokens() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	n, err := repository.NewAuthRepository(db.DB).CleanupExpiredTokens(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("Failed to prune tokens: %v", err)
	}
	fmt.Printf("Deleted %d expired refresh tokens\n", n)
}

func explainCriteria(cmd *cobra.Command, file string, now time.Time) error {
	in := cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var criteria entities.SmartTagCriteria
	if err := json.NewDecoder(in).Decode(&criteria); err != nil {
		return fmt.Errorf("failed to decode criteria: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := smarttag.Validate(criteria); err != nil {
		var verrs smarttag.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(out, "invalid: %s\n", v)
			}
		}
		return err
	}

	filter, err := smarttag.Compile(criteria)
	if err != nil {
		return err
	}
	if filter.Universal() {
		fmt.Fprintln(out, "no filters enabled, every task matches")
		return nil
	}

	where, args, err := filter.Where(now, smarttag.DefaultSchema()).ToSql()
	if err != nil {
		return err
	}
	where, err = sq.Dollar.ReplacePlaceholders(where)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "WHERE %s\n", where)
	for i, arg := range args {
		fmt.Fprintf(out, "  $%d = %v\n", i+1, arg)
	}
	return nil
}
