package api

import (
	"log"
	"net/http"
	"os"

	"github.com/serenitycare/Serenity-server/service/appointment"
	"github.com/serenitycare/Serenity-server/service/availability"
	"github.com/serenitycare/Serenity-server/service/calendar"
	"github.com/serenitycare/Serenity-server/service/client"
	"github.com/serenitycare/Serenity-server/service/dashboard"
	"github.com/serenitycare/Serenity-server/service/mailer"
	"github.com/serenitycare/Serenity-server/service/newsletter"
	"github.com/serenitycare/Serenity-server/service/provider"
	"github.com/serenitycare/Serenity-server/service/testimonial"
	"github.com/serenitycare/Serenity-server/service/user"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address  string
	db       *gorm.DB
	mail     *mailer.Mailer
	calendar *calendar.Client
}

func NewApiServer(address string, db *gorm.DB, mail *mailer.Mailer, cal *calendar.Client) *APIServer {
	return &APIServer{
		address:  address,
		db:       db,
		mail:     mail,
		calendar: cal,
	}
}

func (s *APIServer) Run() error {
	router := s.Router()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, cors(router)))
}

// Router builds the full route table. Split out from Run so tests can serve
// requests without binding a port.
func (s *APIServer) Router() *mux.Router {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db, s.mail)
	userHandler.RegisterRoutes(subrouter)

	providerHandler := provider.NewProviderHandler(s.db)
	providerHandler.RegisterRoutes(subrouter)

	clientHandler := client.NewClientHandler(s.db)
	clientHandler.RegisterRoutes(subrouter)

	availabilityHandler := availability.NewAvailabilityHandler(s.db)
	availabilityHandler.RegisterRoutes(subrouter)

	appointmentHandler := appointment.NewAppointmentHandler(s.db, s.mail, s.calendar)
	appointmentHandler.RegisterRoutes(subrouter)

	testimonialHandler := testimonial.NewTestimonialHandler(s.db)
	testimonialHandler.RegisterRoutes(subrouter)

	newsletterHandler := newsletter.NewNewsletterHandler(s.db, s.mail)
	newsletterHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewDashboardHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	calendarHandler := calendar.NewCalendarHandler(s.calendar)
	calendarHandler.RegisterRoutes(subrouter)
	calendarHandler.RegisterCallbackRoute(router)

	return router
}
