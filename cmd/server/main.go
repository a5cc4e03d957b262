package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"symptom-triage-agent/internal/catalog"
	"symptom-triage-agent/internal/dialogue"
	"symptom-triage-agent/internal/nlu"
	"symptom-triage-agent/internal/platform/telegram"
	"symptom-triage-agent/internal/report"
	"symptom-triage-agent/internal/translate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// 1. Catalog
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	cfg := catalog.DefaultConfig()
	if path := os.Getenv("CATALOG_CONFIG"); path != "" {
		var err error
		cfg, err = catalog.LoadConfig(path)
		if err != nil {
			log.Fatalf("Failed to load catalog config: %v", err)
		}
	}
	cat, err := catalog.Load(dataDir, cfg.Synonyms)
	if err != nil {
		// An inconsistent catalog would produce undefined rankings;
		// refuse to start.
		log.Fatalf("Failed to load catalog from %s: %v", dataDir, err)
	}
	log.Printf("Loaded catalog: %d symptoms, %d diseases", cat.NumSymptoms(), cat.NumDiseases())

	// 2. Session store
	var repo dialogue.Repository
	dbConnStr := os.Getenv("DATABASE_URL")
	if dbConnStr == "" {
		log.Println("DATABASE_URL not set, using in-memory session store")
		repo = dialogue.NewMemoryRepository()
	} else {
		var db *sql.DB
		for i := 0; i < 10; i++ {
			db, err = sql.Open("postgres", dbConnStr)
			if err == nil {
				err = db.Ping()
			}
			if err == nil {
				break
			}
			log.Printf("Waiting for DB... (%d/10)", i+1)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			log.Fatalf("Could not connect to DB: %v", err)
		}
		log.Println("Connected to Database.")

		m, err := migrate.New("file://migrations", dbConnStr)
		if err != nil {
			log.Fatalf("Migration init failed: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("Migrations applied successfully!")

		repo = dialogue.NewRepository(db)
	}

	// 3. Collaborators
	var classifier nlu.Classifier = nlu.NewRuleClassifier()
	var translator translate.Translator = translate.Noop{}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		model := os.Getenv("OPENAI_MODEL")
		classifier = nlu.NewOpenAIClassifier(apiKey, model)
		translator = translate.NewOpenAITranslator(apiKey, model)
		log.Println("Using OpenAI-backed intent classification and translation.")
	}

	var reportSvc dialogue.ReportService
	tgToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	clinicianChatID, _ := strconv.ParseInt(os.Getenv("CLINICIAN_CHAT_ID"), 10, 64)
	if tgToken != "" && clinicianChatID != 0 {
		reportSvc = report.NewService(telegram.NewClient(tgToken), clinicianChatID)
	} else {
		log.Println("Warning: TELEGRAM_BOT_TOKEN or CLINICIAN_CHAT_ID not set. Clinician reports disabled.")
	}

	// 4. Services
	engine := dialogue.NewEngine(cat, cfg)
	svc := dialogue.NewService(repo, engine, reportSvc)
	handler := dialogue.NewHandler(svc, classifier, translator)

	// 5. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		dialogue.RegisterRoutes(r, handler)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server starting on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
