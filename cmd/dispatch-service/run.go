package dispatch_service

import (
	"fmt"
	"net/http"

	agencyhandler "fleet-dispatch/internal/agency/handler"
	agencyrepo "fleet-dispatch/internal/agency/repository"
	agencyservice "fleet-dispatch/internal/agency/service"
	"fleet-dispatch/internal/audit"
	auditrepo "fleet-dispatch/internal/audit/repository"
	"fleet-dispatch/internal/common/auth"
	"fleet-dispatch/internal/common/config"
	"fleet-dispatch/internal/common/logger"
	"fleet-dispatch/internal/common/rmq"
	ws "fleet-dispatch/internal/common/websocket"
	fleethandler "fleet-dispatch/internal/fleet/handler"
	fleetrepo "fleet-dispatch/internal/fleet/repository"
	fleetservice "fleet-dispatch/internal/fleet/service"
	"fleet-dispatch/internal/notify"
	parcelhandler "fleet-dispatch/internal/parcel/handler"
	parcelrepo "fleet-dispatch/internal/parcel/repository"
	parcelservice "fleet-dispatch/internal/parcel/service"
	shifthandler "fleet-dispatch/internal/shift/handler"
	shiftrepo "fleet-dispatch/internal/shift/repository"
	shiftservice "fleet-dispatch/internal/shift/service"

	"github.com/jackc/pgx/v5"
)

// Run wires the repositories, services and handlers and serves HTTP.
// mq may be nil; the dispatcher then degrades to websocket-only
// delivery.
func Run(cfg *config.Config, conn *pgx.Conn, mq *rmq.RabbitMQ) error {
	logger.SetServiceName("dispatch-service")
	auth.SetSecret(cfg.Auth.JWTSecret)

	users := agencyrepo.NewUserRepository(conn)
	agencies := agencyrepo.NewAgencyRepository(conn)
	fleet := fleetrepo.NewFleetRepository(conn)
	shifts := shiftrepo.NewShiftRepository(conn)
	packages := parcelrepo.NewPackageRepository(conn)
	auditStore := auditrepo.NewAuditRepository(conn)

	resolver := auth.NewResolver(users)
	recorder := audit.NewRecorder(auditStore, users)

	hub := ws.NewHub()
	var pub *notify.Publisher
	if mq != nil {
		pub = notify.NewPublisher(mq, cfg.RabbitMQ.Exchange)
	}
	dispatcher := notify.NewDispatcher(pub, hub)

	registry := fleetservice.NewRegistry(fleet)
	shiftSvc := shiftservice.NewShiftService(shifts, registry, registry, dispatcher, recorder)
	packageSvc := parcelservice.NewPackageService(packages, shifts, recorder)
	agencySvc := agencyservice.NewAgencyService(agencies, users, recorder)

	shiftH := shifthandler.NewShiftHandler(shiftSvc)
	packageH := parcelhandler.NewPackageHandler(packageSvc)
	fleetH := fleethandler.NewFleetHandler(registry)
	agencyH := agencyhandler.NewAgencyHandler(agencySvc)

	api := http.NewServeMux()
	api.HandleFunc("POST /shifts", shiftH.CreateShift)
	api.HandleFunc("GET /shifts", shiftH.ListShifts)
	api.HandleFunc("GET /shifts/{shift_id}", shiftH.GetShift)
	api.HandleFunc("PATCH /shifts/{shift_id}", shiftH.UpdateShift)
	api.HandleFunc("DELETE /shifts/{shift_id}", shiftH.DeleteShift)

	api.HandleFunc("POST /packages", packageH.CreatePackage)
	api.HandleFunc("GET /packages/{package_id}", packageH.GetPackage)
	api.HandleFunc("PATCH /packages/{package_id}", packageH.UpdatePackage)
	api.HandleFunc("PATCH /packages/{package_id}/status", packageH.UpdateStatus)
	api.HandleFunc("DELETE /packages/{package_id}", packageH.DeletePackage)

	api.HandleFunc("POST /buses", fleetH.CreateBus)
	api.HandleFunc("GET /buses", fleetH.ListBuses)
	api.HandleFunc("PATCH /buses/{plate_number}/status", fleetH.UpdateBusStatus)
	api.HandleFunc("POST /drivers", fleetH.CreateDriver)
	api.HandleFunc("GET /drivers", fleetH.ListDrivers)
	api.HandleFunc("PATCH /drivers/{driver}/status", fleetH.UpdateDriverStatus)

	api.HandleFunc("POST /agencies", agencyH.CreateAgency)
	api.HandleFunc("GET /agencies", agencyH.ListAgencies)
	api.HandleFunc("DELETE /agencies/{name}", agencyH.DeleteAgency)
	api.HandleFunc("PATCH /users/{user_id}/role", agencyH.ChangeUserRole)

	mux := http.NewServeMux()
	mux.Handle("/", auth.Middleware(resolver, api))
	mux.HandleFunc("POST /auth/token", auth.GetTokenHandler())
	mux.HandleFunc("GET /ws/driver", ws.DriverWSHandler(hub))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info("http_listen", "Dispatch service listening on "+addr, "", "")
	return http.ListenAndServe(addr, mux)
}
