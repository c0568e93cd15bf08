package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"autorenta/internal/api"
	"autorenta/internal/auth"
	"autorenta/internal/repository"
	"autorenta/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	vehicleRepo := repository.NewVehicleRepository(database)
	reservationRepo := repository.NewReservationRepository(database)
	userRepo := repository.NewUserRepository(database)
	dashboardRepo := repository.NewDashboardRepository(database)
	jobRepo := repository.NewJobRepository(database)

	reservationSvc := service.NewReservationService(reservationRepo, vehicleRepo)
	authSvc := service.NewAuthService(userRepo)
	dashboardSvc := service.NewDashboardService(dashboardRepo)
	jobSvc := service.NewJobService(jobRepo)

	reservationHandler := api.NewReservationHandler(reservationSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleRepo)
	authHandler := api.NewAuthHandler(authSvc)
	adminHandler := api.NewAdminHandler(reservationSvc, dashboardSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/vehicles", vehicleHandler.ListAvailable).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", vehicleHandler.Get).Methods("GET")

	// Authenticated endpoints
	user := r.PathPrefix("/api/reservations").Subrouter()
	user.Use(auth.Middleware)
	user.HandleFunc("", reservationHandler.Create).Methods("POST")
	user.HandleFunc("/mine", reservationHandler.ListMine).Methods("GET")
	user.HandleFunc("/{id}", reservationHandler.Get).Methods("GET")
	user.HandleFunc("/{id}", reservationHandler.UpdateDates).Methods("PUT")
	user.HandleFunc("/{id}", reservationHandler.Cancel).Methods("DELETE")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware, auth.AdminOnly)
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/stats", adminHandler.ReservationStats).Methods("GET")
	admin.HandleFunc("/reservations/{id}/status", adminHandler.ChangeStatus).Methods("PATCH")
	admin.HandleFunc("/dashboard", adminHandler.DashboardSummary).Methods("GET")

	// Reconciler for vehicles left held after a partial failure.
	c := cron.New()
	if _, err := c.AddFunc("@every 10m", func() {
		if err := jobSvc.ReleaseOrphanedHolds(); err != nil {
			log.Printf("Reconciler error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reconciler: %v", err)
	}
	c.Start()
	defer c.Stop()

	origins := strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",")
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
