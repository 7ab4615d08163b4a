package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/vitrineapp/vitrine/internal/platform/request"
	"github.com/vitrineapp/vitrine/internal/platform/respond"
	"github.com/vitrineapp/vitrine/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the review endpoints under the app subtree.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{id}/reviews", handler.listReviews)
	router.Post("/{id}/reviews", handler.submitReview)
}

func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reviews, meta, err := handler.service.ListReviews(request.Context(), appID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, reviews, meta)
}

func (handler *Handler) submitReview(writer http.ResponseWriter, request *http.Request) {
	appID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SubmitReviewInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.SubmitReview(request.Context(), appID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, review)
}
