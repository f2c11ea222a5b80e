package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func NewRouter(h *HTTPHandler, ws http.Handler, l logger.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(logger.HTTPLogger(l))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	if ws != nil {
		r.Handle("/ws", ws)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/queue/join", h.JoinQueue)
		r.Get("/queue/entries/{entryId}", h.GetEntry)
		r.Delete("/queue/entries/{entryId}", h.LeaveQueue)
		r.Get("/queue/user/{userId}", h.GetUserEntry)

		r.Get("/queues", h.ListQueues)
		r.Get("/queues/{serviceId}", h.GetQueue)
		r.Get("/queues/{serviceId}/stats", h.GetQueueStats)
		r.Post("/queues/{serviceId}/call-next", h.CallNext)
		r.Get("/stats", h.GetOverallStats)

		r.Post("/entries/{entryId}/start", h.StartService)
		r.Post("/entries/{entryId}/complete", h.CompleteService)
		r.Post("/entries/{entryId}/skip", h.SkipEntry)
		r.Put("/entries/{entryId}/position", h.AdjustPosition)

		r.Post("/admission/verify", h.VerifyAdmission)

		r.Get("/services", h.ListServiceTypes)
		r.Get("/services/{serviceId}", h.GetServiceType)
		r.Patch("/services/{serviceId}", h.UpdateServiceType)

		r.Get("/config", h.GetConfiguration)
		r.Put("/config", h.UpdateConfiguration)

		r.Get("/transactions", h.GetTransactions)
		r.Get("/system/status", h.SystemStatus)
	})

	return r
}
