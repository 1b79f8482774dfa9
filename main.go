package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"butler-server/ai"
	"butler-server/bot"
	"butler-server/config"
	"butler-server/handlers"
	"butler-server/media"
	"butler-server/middleware"
	"butler-server/movies"
	"butler-server/reminder"
	"butler-server/store"
	"butler-server/vault"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize store
	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer s.Close()

	// Initialize WebSocket hub
	hub := handlers.NewHub()
	go hub.Run()

	// Reminder subsystem: registry + engine, reloaded before serving
	registry := reminder.NewTimerRegistry()
	notifier := handlers.NewHubNotifier(hub, s)
	engine := reminder.NewEngine(s, registry, notifier)
	engine.Reload(time.Now())

	// Retention sweep for fired reminders
	reminder.NewSweeper(s).Start()

	// Note version history
	noteVault, err := vault.Open(cfg.VaultDir)
	if err != nil {
		log.Printf("Warning: note vault unavailable, history disabled: %v", err)
		noteVault = nil
	}

	// Third-party clients
	if cfg.GeminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set. /ai will not work.")
	}
	if cfg.OMDBKey == "" {
		log.Println("Warning: OMDB_API_KEY not set. /movie will not work.")
	}
	gemini := ai.NewGeminiClient(cfg.GeminiKey, cfg.GeminiModel)
	omdb := movies.NewClient(cfg.OMDBKey)

	downloader, err := media.NewDownloader(cfg.DownloadDir)
	if err != nil {
		log.Fatal("Failed to initialize downloader:", err)
	}

	// Command dispatcher and handlers
	dispatcher := bot.NewDispatcher(s, engine, gemini, omdb, downloader, noteVault)
	authHandler := handlers.NewAuthHandler(s)
	messageHandler := handlers.NewMessageHandler(s, hub, dispatcher)
	reminderHandler := handlers.NewReminderHandler(s, engine)
	fileHandler := handlers.NewFileHandler(s, cfg.UploadDir, cfg.DownloadDir)

	// Create router
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/ws", hub.HandleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Protected routes (auth required)
	mux.HandleFunc("GET /api/auth/me", withAuth(authHandler.Me))

	// Conversation
	mux.HandleFunc("POST /api/messages", withAuth(messageHandler.Send))
	mux.HandleFunc("GET /api/messages", withAuth(messageHandler.History))

	// Reminders
	mux.HandleFunc("GET /api/reminders", withAuth(reminderHandler.List))
	mux.HandleFunc("POST /api/reminders", withAuth(reminderHandler.Create))
	mux.HandleFunc("DELETE /api/reminders/{id}", withAuth(reminderHandler.Delete))

	// Files
	mux.HandleFunc("POST /api/files/upload", withAuth(fileHandler.Upload))
	mux.HandleFunc("GET /api/files", withAuth(fileHandler.List))
	mux.HandleFunc("GET /api/files/{filename}", fileHandler.Serve)

	// CORS wrapper
	handler := corsMiddleware(mux)

	log.Printf("Butler server starting on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

// withAuth wraps a handler with authentication
func withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := middleware.SetUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
