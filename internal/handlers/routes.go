package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/config"
)

type Handlers struct {
	Auth          *auth.AuthHandler
	Courses       *CourseHandler
	Units         *UnitHandler
	Registrations *RegistrationHandler
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}

func created(o *huma.Operation) {
	o.DefaultStatus = http.StatusCreated
}

func RegisterRoutes(r chi.Router, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.Auth.AuthMiddleware)

	apiConfig := huma.DefaultConfig("Gloggi Ausbildung API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	api := humachi.New(r, apiConfig)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/auth/login", h.Auth.HandleLogin)
	r.Get("/auth/callback", h.Auth.HandleCallback)
	huma.Get(api, "/me", h.Auth.HandleMe, secured)
	huma.Get(api, "/me/registrations", h.Registrations.HandleMine, secured)

	// Courses
	huma.Get(api, "/courses/open", h.Courses.HandleListOpen)
	huma.Get(api, "/courses", h.Courses.HandleList, secured)
	huma.Post(api, "/courses", h.Courses.HandleCreate, secured, created)
	huma.Get(api, "/courses/{slug}", h.Courses.HandleGet)
	huma.Put(api, "/courses/{slug}", h.Courses.HandleUpdate, secured)
	huma.Delete(api, "/courses/{slug}", h.Courses.HandleDelete, secured)
	huma.Get(api, "/courses/{slug}/registrations", h.Courses.HandleRegistrations, secured)
	huma.Post(api, "/courses/{slug}/registrations", h.Registrations.HandleRegister, secured, created)
	huma.Get(api, "/courses/{slug}/roster", h.Courses.HandleRoster, secured)

	// Units
	huma.Get(api, "/units", h.Units.HandleList, secured)
	huma.Post(api, "/units", h.Units.HandleCreate, secured, created)
	huma.Get(api, "/units/{id}", h.Units.HandleGet, secured)
	huma.Put(api, "/units/{id}", h.Units.HandleUpdate, secured)
	huma.Delete(api, "/units/{id}", h.Units.HandleDelete, secured)

	// Registrations
	huma.Get(api, "/registrations/{id}", h.Registrations.HandleGet, secured)
	huma.Put(api, "/registrations/{id}", h.Registrations.HandleUpdate, secured)
	huma.Delete(api, "/registrations/{id}", h.Registrations.HandleDelete, secured)
	huma.Post(api, "/registrations/{id}/received", h.Registrations.HandleMarkReceived, secured)
	huma.Post(api, "/registrations/{id}/paid", h.Registrations.HandleMarkPaid, secured)
	huma.Post(api, "/registrations/{id}/emergency-sheet-received", h.Registrations.HandleMarkEmergencySheetReceived, secured)
	huma.Get(api, "/registrations/{id}/revisions", h.Registrations.HandleRevisions, secured)

	// Emergency sheets
	huma.Post(api, "/registrations/{id}/emergency-sheet", h.Registrations.HandleCreateEmergencySheet, secured, created)
	huma.Get(api, "/registrations/{id}/emergency-sheet", h.Registrations.HandleGetEmergencySheet, secured)
	huma.Put(api, "/registrations/{id}/emergency-sheet", h.Registrations.HandleUpdateEmergencySheet, secured)
	huma.Delete(api, "/registrations/{id}/emergency-sheet", h.Registrations.HandleDeleteEmergencySheet, secured)

	return api
}
