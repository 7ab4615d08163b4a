package scrape

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/vitrineapp/vitrine/internal/platform/request"
	"github.com/vitrineapp/vitrine/internal/platform/respond"
)

type Handler struct {
	scraper *Scraper
}

func NewHandler(scraper *Scraper) *Handler {
	return &Handler{scraper: scraper}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.scrapeMetadata)
}

func (handler *Handler) scrapeMetadata(writer http.ResponseWriter, request *http.Request) {
	var input struct {
		URL string `json:"url"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	metadata, err := handler.scraper.Scrape(request.Context(), input.URL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, metadata)
}
