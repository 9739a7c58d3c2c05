// main is the entry point of the student directory service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Create the in-memory store and start the source loads in the
//     background (fire-and-forget: the server does not wait for them)
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: close live sessions, finish in-flight
//     requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-directory --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-directory
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/http/handlers/directory"
	"github.com/aanand-mishra/student-directory/internal/http/handlers/live"
	"github.com/aanand-mishra/student-directory/internal/http/handlers/lookup"
	"github.com/aanand-mishra/student-directory/internal/loader"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/reference"
	"github.com/aanand-mishra/student-directory/internal/search"
	"github.com/aanand-mishra/student-directory/internal/storage"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-directory",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Store + background loads ───────────────────────────────────────
	// The store starts empty. Searches that arrive before the loads finish
	// simply find nothing; a failed load leaves its collections empty.
	store := storage.New()

	loadCtx, stopLoads := context.WithCancel(context.Background())
	defer stopLoads()

	ld := loader.New(store, cfg.Sources, nil, log)
	go func() {
		outcomes := ld.LoadAll(loadCtx)
		for _, o := range outcomes {
			if !o.OK {
				return
			}
		}
		log.Info("all sources loaded", slog.Any("snapshot", store.Version()))
	}()

	engine := match.New(match.Options{
		MinQueryLength:  cfg.Search.MinQueryLength,
		EmployeeLimit:   cfg.Search.EmployeeLimit,
		SessionLimit:    cfg.Search.SessionLimit,
		SuggestionLimit: cfg.Search.SuggestionLimit,
	})
	searcher := search.New(store, engine)
	resolver := reference.New(store)
	sessions := search.NewRegistry(searcher, search.Delay{Min: cfg.Search.Delay}, search.Limits{
		MaxOpen: cfg.Search.LiveMaxOpen,
		IdleTTL: cfg.Search.LiveIdleTTL,
	})

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	// Route table:
	//   GET    /api/search                combined search
	//   GET    /api/students/search       roster name search
	//   GET    /api/students/suggest      name suggestions
	//   GET    /api/employees/search      staff search
	//   GET    /api/sessions/search       session search
	//   GET    /api/sessions              sessions by college/department/class
	//   GET    /api/colleges/{id}         college name
	//   GET    /api/programs/{id}         program name
	//   GET    /api/departments/{id}      department name
	//   GET    /api/status                snapshot summary
	//   POST   /api/live                  open a live search session
	//   POST   /api/live/{id}/query       submit live search terms
	//   GET    /api/live/{id}             newest live result
	//   DELETE /api/live/{id}             close a live session
	router := http.NewServeMux()

	router.HandleFunc("GET /api/search", lookup.Combined(searcher, resolver))
	router.HandleFunc("GET /api/students/search", lookup.Students(searcher))
	router.HandleFunc("GET /api/students/suggest", lookup.Suggest(searcher))
	router.HandleFunc("GET /api/employees/search", lookup.Employees(searcher, resolver))
	router.HandleFunc("GET /api/sessions/search", lookup.Sessions(searcher))
	router.HandleFunc("GET /api/sessions", lookup.SessionsByFilter(searcher))

	router.HandleFunc("GET /api/colleges/{id}", directory.College(resolver))
	router.HandleFunc("GET /api/programs/{id}", directory.Program(resolver))
	router.HandleFunc("GET /api/departments/{id}", directory.Department(resolver))
	router.HandleFunc("GET /api/status", directory.StatusHandler(store, sessions))

	router.HandleFunc("POST /api/live", live.Open(sessions))
	router.HandleFunc("POST /api/live/{id}/query", live.Submit(sessions))
	router.HandleFunc("GET /api/live/{id}", live.Get(sessions, resolver))
	router.HandleFunc("DELETE /api/live/{id}", live.Close(sessions))

	// ── 5. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That is expected, not an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	// Loads still in flight are abandoned; live sessions stop their
	// pending searches before the server drains.
	stopLoads()
	sessions.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
