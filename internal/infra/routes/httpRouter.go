package routes

import (
	"encoding/json"
	"net/http"

	"whatsapp-channel/internal/infra/handlers"
	"whatsapp-channel/internal/infra/logger"
	"whatsapp-channel/internal/middleware"

	"github.com/gorilla/mux"
)

const WebhookPath = "/webhook"

type Routes struct {
	Mux         *mux.Router
	HttpHandler *handlers.WhatsAppHandlers
	Logger      *logger.Logger
}

func NewRoutes(mux *mux.Router, HttpHandler *handlers.WhatsAppHandlers, logger *logger.Logger) *Routes {
	return &Routes{mux, HttpHandler, logger}
}

func (r *Routes) Init() {
	signed := middleware.VerifySignature(r.Logger, r.HttpHandler.AppSecret)
	admin := middleware.RequireBearer(r.Logger, r.HttpHandler.AdminToken)

	r.Mux.HandleFunc(WebhookPath, r.HttpHandler.MetaWebhook).Methods(http.MethodGet)
	r.Mux.Handle(WebhookPath, signed(http.HandlerFunc(r.HttpHandler.MetaWebhook))).Methods(http.MethodPost)

	r.Mux.Handle("/messages", admin(http.HandlerFunc(r.HttpHandler.HandleSendMessage))).Methods(http.MethodPost)
	r.Mux.Handle("/settings", admin(http.HandlerFunc(r.HttpHandler.UpdateSettings))).Methods(http.MethodPost)
	r.Mux.Handle("/settings", admin(http.HandlerFunc(r.HttpHandler.GetSettings))).Methods(http.MethodGet)
	r.Mux.Handle("/profile/{phone_number_id}", admin(http.HandlerFunc(r.HttpHandler.GetBusinessProfile))).Methods(http.MethodGet)

	// Attachment URLs are handed to end users inside events, so they stay open.
	r.Mux.HandleFunc("/attachments/{id}", r.HttpHandler.ServeAttachment).Methods(http.MethodGet)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
