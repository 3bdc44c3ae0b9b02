package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/hrlink/people-sync/internal/contract"
	"github.com/hrlink/people-sync/internal/datasync"
	"github.com/hrlink/people-sync/internal/integrity"
	"github.com/hrlink/people-sync/internal/profile"
	"github.com/hrlink/people-sync/internal/termination"
	"github.com/hrlink/people-sync/internal/transport/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, contractHandler *contract.Handler, syncHandler *datasync.Handler, terminationHandler *termination.Handler, integrityHandler *integrity.Handler, profileHandler *profile.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.AccountContext)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if contractHandler != nil {
			r.Route("/contracts", func(cr chi.Router) {
				cr.Post("/", contractHandler.CreateContract)
				cr.Get("/{contractID}", contractHandler.GetContract)
				cr.Post("/{contractID}/approve", contractHandler.ApproveContract)
				cr.Post("/{contractID}/reject", contractHandler.RejectContract)
				cr.Post("/{contractID}/request-termination", contractHandler.RequestTermination)
				cr.Get("/{contractID}/settings", contractHandler.GetSettings)
				cr.Patch("/{contractID}/settings", contractHandler.UpdateSettings)

				if terminationHandler != nil {
					cr.Post("/{contractID}/terminate", terminationHandler.TerminateContract)
					cr.Get("/{contractID}/retention", terminationHandler.GetRetentionStatus)
				}

				if syncHandler != nil {
					cr.Get("/{contractID}/syncable-fields", syncHandler.GetSyncableFields)
					cr.Post("/{contractID}/sync/personal-to-employee", syncHandler.SyncPersonalToEmployee)
					cr.Post("/{contractID}/sync/employee-to-personal", syncHandler.SyncEmployeeToPersonal)
					cr.Get("/{contractID}/snapshot", syncHandler.GetSnapshot)
					cr.Post("/{contractID}/snapshot/apply", syncHandler.ApplySnapshot)
					cr.Get("/{contractID}/sync-logs", syncHandler.GetSyncLogs)
				}
			})
		}

		if terminationHandler != nil {
			r.Get("/terminations", terminationHandler.GetTerminationHistory)
		}

		if syncHandler != nil {
			r.Post("/users/{userID}/sync", syncHandler.SyncAllForUser)
		}

		if contractHandler != nil {
			r.Get("/users/{userID}/contracts", contractHandler.ListContractsForPerson)
		}

		if profileHandler != nil {
			r.Get("/users/{userID}/profile", profileHandler.GetProfile)
			r.Patch("/users/{userID}/profile", profileHandler.UpdateProfile)
		}

		if integrityHandler != nil {
			r.Route("/integrity", func(ir chi.Router) {
				ir.Get("/issues", integrityHandler.ValidateAll)
				ir.Get("/summary", integrityHandler.GetSummary)
				ir.Post("/autofix", integrityHandler.AutoFix)
			})
		}
	})
}
