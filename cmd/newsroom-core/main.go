package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/crisislab/newsroom-core/internal/adapters/driven/backend"
	"github.com/crisislab/newsroom-core/internal/adapters/driven/httpfetch"
	"github.com/crisislab/newsroom-core/internal/adapters/driven/localstore"
	"github.com/crisislab/newsroom-core/internal/adapters/driven/memcache"
	redisadapter "github.com/crisislab/newsroom-core/internal/adapters/driven/redis"
	"github.com/crisislab/newsroom-core/internal/core/domain"
	"github.com/crisislab/newsroom-core/internal/core/ports/driven"
	"github.com/crisislab/newsroom-core/internal/core/ports/driving"
	"github.com/crisislab/newsroom-core/internal/core/services"
	"github.com/crisislab/newsroom-core/internal/worker"
)

var version = "dev"

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: newsroom-core <register|login|logout|upload|list|show> [args]")
		os.Exit(2)
	}
	mode := os.Args[1]
	args := os.Args[2:]

	log.Printf("newsroom-core %s running %s", version, mode)

	// Configuration from environment
	baseURL := getEnv("API_BASE_URL", "http://localhost:8000")
	authBaseURL := getEnv("AUTH_API_BASE_URL", baseURL)
	defaultScope := getEnv("DEFAULT_SCOPE", "101")
	redisURL := getEnv("REDIS_URL", "")
	stateDir := getEnv("STATE_DIR", defaultStateDir())

	clientCfg := backend.Config{
		BaseURL:         baseURL,
		AuthBaseURL:     authBaseURL,
		Timeout:         time.Duration(getEnvInt("API_TIMEOUT_MS", 120000)) * time.Millisecond,
		UploadTimeout:   time.Duration(getEnvInt("API_UPLOAD_TIMEOUT_MS", 300000)) * time.Millisecond,
		AuthTimeout:     time.Duration(getEnvInt("AUTH_API_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxUploadSize:   int64(getEnvInt("MAX_UPLOAD_SIZE", 100*1024*1024)),
		WithCredentials: getEnvBool("API_WITH_CREDENTIALS", false),
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	logger := slog.Default()
	client := backend.NewClient(clientCfg)

	// ===== Content cache (Redis if available, otherwise in-process) =====
	var contentCache driven.ContentCache
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		contentCache = redisadapter.NewContentCache(redisClient)
		log.Println("Using Redis content cache")
	} else {
		contentCache = memcache.NewContentCache(time.Hour)
		log.Println("Using in-memory content cache")
	}

	// ===== Credential store =====
	credStore, err := localstore.NewStore(stateDir)
	if err != nil {
		log.Fatalf("Failed to open state directory: %v", err)
	}

	// ===== Services =====
	authService := services.NewAuthService(
		client,
		credStore,
		getEnv("TOKEN_STORAGE_KEY", ""),
		getEnv("USER_STORAGE_KEY", ""),
		logger,
	)

	resolver := worker.NewContentResolver(worker.ContentResolverConfig{
		Fetcher:     httpfetch.NewFetcher(30 * time.Second),
		Cache:       contentCache,
		Logger:      logger,
		Concurrency: getEnvInt("RESOLVER_CONCURRENCY", 4),
	})

	listingService := services.NewListingAggregator(services.ListingAggregatorConfig{
		Gateway:  client,
		Cache:    contentCache,
		Resolver: resolver,
		Logger:   logger,
	})

	uploadService := services.NewUploadWorkflow(services.UploadWorkflowConfig{
		Gateway:      client,
		DisplayDelay: time.Duration(getEnvInt("SUCCESS_DISPLAY_DELAY_MS", 2500)) * time.Millisecond,
		Logger:       logger,
	})
	defer uploadService.Close()

	switch mode {
	case "register":
		err = runRegister(ctx, authService, args)
	case "login":
		err = runLogin(ctx, authService, args)
	case "logout":
		err = authService.Logout()
	case "upload":
		err = runUpload(ctx, uploadService, authService, defaultScope, args)
	case "list":
		err = runList(ctx, listingService, resolver, authService, defaultScope, args)
	case "show":
		err = runShow(ctx, client, args)
	default:
		log.Fatalf("Unknown mode: %s (use: register, login, logout, upload, list, or show)", mode)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", mode, err)
	}
}

func runRegister(ctx context.Context, auth driving.AuthService, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: register <email> <password> <full name>")
	}
	session, err := auth.Register(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s)\n", session.User.FullName, session.User.Email)
	return nil
}

func runLogin(ctx context.Context, auth driving.AuthService, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: login <email> <password>")
	}
	session, err := auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", session.User.Email)
	return nil
}

// runUpload builds a submission from the command line and drives it through
// the workflow, waiting out the post-success display delay for the derived
// destination.
func runUpload(ctx context.Context, uploads driving.UploadService, auth driving.AuthService, defaultScope string, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: upload <title> <file>... [--context text] [--descriptions a,b,c]")
	}

	sub := domain.Submission{
		Scope: scopeFor(auth, defaultScope),
		Form:  domain.UploadForm{Title: args[0]},
	}

	var paths []string
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--context":
			i++
			if i < len(rest) {
				sub.Form.Context = rest[i]
			}
		case "--descriptions":
			i++
			if i < len(rest) {
				sub.Form.ImageDescriptions = rest[i]
			}
		default:
			paths = append(paths, rest[i])
		}
	}

	for _, path := range paths {
		file, err := readUploadFile(path)
		if err != nil {
			return err
		}
		switch file.Category() {
		case domain.CategoryImage:
			sub.Files.AddImages(file)
		case domain.CategoryDocument:
			sub.Files.AddDocuments(file)
		case domain.CategorySpreadsheet:
			if err := sub.Files.SetSpreadsheet(file); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unsupported file type: %s", domain.ErrValidation, path)
		}
	}

	outcome, err := uploads.Submit(ctx, sub)
	if err != nil {
		return err
	}
	fmt.Printf("Upload succeeded (attempt %s)\n", outcome.AttemptID)

	select {
	case dest := <-uploads.Navigations():
		if dest.Kind == domain.DestinationProject {
			fmt.Printf("Project created: %s (scope %s)\n", dest.ProjectID, dest.Scope)
		} else {
			fmt.Printf("Analysis accepted; see listing for scope %s\n", dest.Scope)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func runList(ctx context.Context, listings driving.ListingService, resolver *worker.ContentResolver, auth driving.AuthService, defaultScope string, args []string) error {
	scopes := args
	if len(scopes) == 0 {
		scopes = []string{scopeFor(auth, defaultScope)}
	}

	if err := resolver.Start(ctx); err != nil {
		return err
	}
	defer resolver.Stop()

	projects, err := listings.FetchProjects(ctx, scopes, getEnvInt("PROJECT_LIMIT", 50))
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%s  %s\n    %s\n", p.ProjectID, p.Title, listings.Preview(ctx, p))
	}
	return nil
}

func runShow(ctx context.Context, gateway driven.AnalysisGateway, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: show <scope> <project-id>")
	}
	project, err := gateway.GetProjectDetails(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n\n", project.Title, project.Context)
	for i, img := range project.Images {
		fmt.Printf("image %d: %s\n", i+1, img.URL())
	}
	for _, doc := range project.Documents {
		name := doc.Filename
		if name == "" {
			name = doc.LegacyKey
		}
		fmt.Printf("document: %s\n", name)
	}
	return nil
}

// scopeFor prefers the logged-in user's id as the owner scope and falls back
// to the configured default.
func scopeFor(auth driving.AuthService, defaultScope string) string {
	if session, ok := auth.Current(); ok && session.User.ID != "" {
		return session.User.ID
	}
	return defaultScope
}

func readUploadFile(path string) (domain.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     content,
	}, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".newsroom-core"
	}
	return filepath.Join(home, ".newsroom-core")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
