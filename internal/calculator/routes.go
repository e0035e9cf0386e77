package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the stateless /calculator endpoints and the
// /sessions endpoints onto the given router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/press", h.Press)
			r.Post("/keys", h.Keys)
			r.Put("/angle", h.SetAngle)

			r.Route("/memory", func(r chi.Router) {
				r.Get("/", h.ListMemory)
				r.Post("/", h.StoreMemory)
				r.Delete("/", h.ClearAllMemory)
				r.Put("/{slot}", h.DescribeMemory)
				r.Delete("/{slot}", h.ClearMemory)
				r.Post("/{slot}/recall", h.RecallMemory)
			})

			r.Route("/history", func(r chi.Router) {
				r.Get("/", h.ListHistory)
				r.Post("/{index}/recall", h.RecallHistory)
				r.Post("/{index}/memory", h.HistoryToMemory)
			})
		})
	})
}
