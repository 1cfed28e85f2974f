// Command vitalscoped is the Vitalscope platform service.
// It serves the assessment API and a health check backed by Postgres.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vitalscope/vitalscope/internal/api"
	"github.com/vitalscope/vitalscope/internal/assessment"
	"github.com/vitalscope/vitalscope/internal/bundle"
	"github.com/vitalscope/vitalscope/internal/platform"
	"github.com/vitalscope/vitalscope/internal/report"
)

type config struct {
	Port          string
	DatabaseURL   string
	APIKey        string
	BundleBackend string
	BundlePath    string
	GCSBucket     string
	S3            bundle.S3Config
	OpenAIKey     string
	OpenAIModel   string
}

func loadConfig() config {
	return config{
		Port:          envOrDefault("PORT", "8080"),
		DatabaseURL:   envOrDefault("DATABASE_URL", "postgres://localhost:5432/vitalscope?sslmode=disable"),
		APIKey:        os.Getenv("API_KEY"),
		BundleBackend: envOrDefault("BUNDLE_BACKEND", "local"),
		BundlePath:    envOrDefault("BUNDLE_PATH", "./bundles"),
		GCSBucket:     os.Getenv("GCS_BUCKET"),
		S3: bundle.S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
	}
}

func main() {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	cfg := loadConfig()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init bundle store: %v", err)
	}
	loader := bundle.NewLoader(store, bundle.NewCacheFromEnv())

	var reporter assessment.Reporter
	if cfg.OpenAIKey != "" {
		gen := report.NewGenerator(cfg.OpenAIKey)
		if cfg.OpenAIModel != "" {
			gen = gen.WithModel(cfg.OpenAIModel)
		}
		reporter = gen
	} else {
		log.Println("OPENAI_API_KEY not set; assessments will be stored without reports")
	}

	svc := assessment.NewService(db, loader, reporter)

	// Set up HTTP routes. The health check stays outside auth.
	apiMux := http.NewServeMux()
	api.NewHandler(svc).RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/v1/", api.APIKeyAuth(cfg.APIKey)(apiMux))
	mux.HandleFunc("GET /healthz", healthHandler(db))

	handler := api.CORS(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Graceful shutdown
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting vitalscoped on :%s (bundles: %s)", cfg.Port, cfg.BundleBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-runCtx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// newStore selects the bundle store backend from configuration.
func newStore(ctx context.Context, cfg config) (bundle.Store, error) {
	switch cfg.BundleBackend {
	case "s3":
		return bundle.NewS3Store(ctx, cfg.S3)
	case "gcs":
		return bundle.NewGCSStore(ctx, cfg.GCSBucket)
	default:
		return bundle.NewLocalStore(cfg.BundlePath), nil
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
