package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iudanet/gophtext/internal/validation"
	"github.com/iudanet/gophtext/pkg/api"
)

// Streams websocket обработчики документов
type Streams struct {
	OT   http.HandlerFunc
	CRDT http.HandlerFunc
}

// NewRouter собирает маршруты API v1
func NewRouter(health *HealthHandler, docs *OTHandler, atoms *CRDTHandler, streams Streams, middlewares ...mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(validateDocument(docs.logger))

	v1.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	v1.HandleFunc("/ot/{doc}", docs.Snapshot).Methods(http.MethodGet)
	v1.HandleFunc("/ot/{doc}/ops", docs.History).Methods(http.MethodGet)
	v1.HandleFunc("/ot/{doc}/ops", docs.Submit).Methods(http.MethodPost)

	v1.HandleFunc("/crdt/{doc}/atoms", atoms.State).Methods(http.MethodGet)
	v1.HandleFunc("/crdt/{doc}/atoms", atoms.Merge).Methods(http.MethodPost)

	if streams.OT != nil {
		v1.HandleFunc("/ot/{doc}/ws", streams.OT).Methods(http.MethodGet)
	}
	if streams.CRDT != nil {
		v1.HandleFunc("/crdt/{doc}/ws", streams.CRDT).Methods(http.MethodGet)
	}

	for _, mw := range middlewares {
		router.Use(mw)
	}
	return router
}

// validateDocument отклоняет запросы с недопустимым идентификатором документа
func validateDocument(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if docID, ok := mux.Vars(r)["doc"]; ok {
				if err := validation.ValidateDocumentID(docID); err != nil {
					writeJSON(w, logger, http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
