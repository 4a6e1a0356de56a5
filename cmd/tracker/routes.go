package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getcalendar "shift-tracker/http-server/calendar/get"
	"shift-tracker/http-server/feed"
	generate_excel "shift-tracker/http-server/generate-report/generate-excel"
	getoffdays "shift-tracker/http-server/offdays/get"
	saveoffdays "shift-tracker/http-server/offdays/save"
	"shift-tracker/http-server/placement"
	gettickets "shift-tracker/http-server/tickets/get"
	"shift-tracker/http-server/tickets/remove"
	savetickets "shift-tracker/http-server/tickets/save"
	updatetickets "shift-tracker/http-server/tickets/update"
	gettimeline "shift-tracker/http-server/timeline/get"
	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

func canEdit(c schedule.Capabilities) bool { return c.CanEditSchedule }

func routes(a *app) *chi.Mux {
	router := chi.NewRouter()
	log := a.log

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	signer := auth.NewSigner(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)

	router.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(log, signer))

		api.Get("/tickets", gettickets.GetTickets(log, a.views))
		api.Post("/tickets", savetickets.SaveTicket(log, a.engine))
		api.Post("/tickets/special", savetickets.SaveSpecial(log, a.engine))
		api.Put("/tickets/{id}/estimate", updatetickets.UpdateEstimate(log, a.engine))
		api.Delete("/tickets/{id}", remove.DeleteTicket(log, a.engine))

		api.Route("/placement", func(pl chi.Router) {
			pl.Use(auth.RequireCapability(canEdit))

			pl.Post("/assign", placement.Assign(log, a.engine, a.roster))
			pl.Post("/lobby", placement.DropToLobby(log, a.engine))
			pl.Post("/special", placement.InsertSpecial(log, a.engine, a.roster))
			pl.Post("/split", placement.Split(log, a.engine))
			pl.Post("/resize", placement.Resize(log, a.engine))
			pl.Post("/consolidate", placement.Consolidate(log, a.engine))
			pl.Post("/clear", placement.Clear(log, a.engine))
		})

		api.Get("/offdays", getoffdays.GetOffDays(log, a.offDays))
		api.Put("/offdays", saveoffdays.SetOffDay(log, a.offDays))

		api.Get("/timeline", gettimeline.GetTimeline(log, a.views))
		api.Get("/calendar/week", getcalendar.GetWeek(log))
		api.Get("/calendar/step", getcalendar.GetStep(log))

		api.Get("/report/excel", generate_excel.GenerateReportExcel(log, a.excel))

		api.Get("/feed", feed.Feed(log, a.hub, a.cfg.CORSOrigins))
	})

	if dir := a.cfg.FrontendDir; dir != "" {
		mountFrontend(router, a, dir)
	}

	return router
}

// mountFrontend serves the built client from dir and falls back to its
// index.html for client-side routes.
func mountFrontend(router chi.Router, a *app, dir string) {
	if _, err := os.Stat(dir); err != nil {
		a.log.Error("frontend directory not found, serving the API only", "path", dir)
		return
	}

	fileServer := http.FileServer(http.Dir(dir))
	router.Handle("/assets/*", fileServer)

	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
