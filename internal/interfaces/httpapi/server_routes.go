package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicContentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/content", handler.GetContent)
	mux.HandleFunc("GET /v1/team", handler.ListTeamMembers)
	mux.HandleFunc("GET /v1/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/events/{slug}", handler.GetEventBySlug)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/team", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateTeamMember)))
	mux.Handle("PATCH /v1/admin/team/{memberID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateTeamMember)))
	mux.Handle("DELETE /v1/admin/team/{memberID}", RequireAdminToken(adminToken, http.HandlerFunc(handler.DeleteTeamMember)))
	mux.Handle("POST /v1/admin/events", RequireAdminToken(adminToken, http.HandlerFunc(handler.CreateEvent)))
	mux.Handle("PATCH /v1/admin/events/{slug}", RequireAdminToken(adminToken, http.HandlerFunc(handler.UpdateEvent)))
	mux.Handle("DELETE /v1/admin/events/{slug}", RequireAdminToken(adminToken, http.HandlerFunc(handler.DeleteEvent)))
	mux.Handle("POST /v1/admin/refresh", RequireAdminToken(adminToken, http.HandlerFunc(handler.RefreshContent)))
	mux.Handle("POST /v1/admin/reconcile", RequireAdminToken(adminToken, http.HandlerFunc(handler.ReconcileDuplicates)))
}
