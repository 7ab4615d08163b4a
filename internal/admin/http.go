// Copyright (c) 2026 Vitrine. All rights reserved.

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/vitrineapp/vitrine/internal/platform/request"
	"github.com/vitrineapp/vitrine/internal/platform/respond"
	"github.com/vitrineapp/vitrine/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the unauthenticated admin endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", handler.login)
}

func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("password", "This field is required"))
		return
	}

	session, err := handler.service.Login(request.Context(), input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}
