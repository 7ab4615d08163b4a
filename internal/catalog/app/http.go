package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/vitrineapp/vitrine/internal/platform/request"
	"github.com/vitrineapp/vitrine/internal/platform/respond"
	"github.com/vitrineapp/vitrine/internal/platform/validate"
	"github.com/vitrineapp/vitrine/pkg/pagination"
)

type Handler struct {
	service *Service
	logos   *LogoResolver
}

func NewHandler(service *Service, logos *LogoResolver) *Handler {
	return &Handler{service: service, logos: logos}
}

// RegisterRoutes mounts the public catalog endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listApps)
	router.Post("/", handler.createApp)
	router.Get("/by-slug/{slug}", handler.getAppBySlug)
	router.Get("/{id}", handler.getApp)
	router.Post("/{id}/rate", handler.rateApp)
	router.Get("/{id}/logo", handler.appLogo)
}

// RegisterAdminRoutes mounts the app endpoints that require an admin token.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Patch("/apps/{id}/approval", handler.setApproval)
	router.Post("/apps/import", handler.importApps)
}

// RegisterCategoryRoutes mounts the category index endpoint.
func (handler *Handler) RegisterCategoryRoutes(router chi.Router) {
	router.Get("/", handler.listCategories)
}

func (handler *Handler) listApps(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	filter := Filter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Sort:     Sort(query.Get("sort")),
	}

	apps, meta, err := handler.service.ListApps(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, apps, meta)
}

func (handler *Handler) getApp(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	app, err := handler.service.GetApp(request.Context(), appID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, app)
}

func (handler *Handler) getAppBySlug(writer http.ResponseWriter, request *http.Request) {
	appSlug := requestutil.Param(request, "slug")

	app, err := handler.service.GetAppBySlug(request.Context(), appSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, app)
}

func (handler *Handler) createApp(writer http.ResponseWriter, request *http.Request) {
	var input CreateAppInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	app, err := handler.service.CreateApp(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, app)
}

func (handler *Handler) rateApp(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Score int `json:"rating"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	app, err := handler.service.RecordRating(request.Context(), appID, input.Score)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, app)
}

// appLogo redirects to the best available logo for the app. The resolver
// probes candidates (icon override, favicon services, the site itself) and
// the first reachable one wins, so the frontend never deals with broken
// image URLs itself.
func (handler *Handler) appLogo(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	app, err := handler.service.GetApp(request.Context(), appID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	target := handler.logos.Resolve(request.Context(), app)
	http.Redirect(writer, request, target, http.StatusFound)
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

func (handler *Handler) setApproval(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Approved *bool `json:"approved"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Approved == nil {
		respond.Error(writer, request, validate.RequiredError("approved", "This field is required"))
		return
	}

	app, err := handler.service.SetApproval(request.Context(), appID, *input.Approved)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, app)
}

func (handler *Handler) importApps(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		Apps []ImportAppInput `json:"apps"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	apps, err := handler.service.ImportApps(request.Context(), input.Apps)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, apps)
}
