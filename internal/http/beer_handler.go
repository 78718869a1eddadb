package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tapcellar/beer-catalog/internal/apperr"
	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/service"
)

type beerHandler struct {
	svc     service.BeerService
	respond *responder
}

func newBeerHandler(svc service.BeerService, respond *responder) *beerHandler {
	return &beerHandler{svc: svc, respond: respond}
}

func (h *beerHandler) register(r chi.Router) {
	r.Route("/beers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{beerID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Patch("/", h.patch)
			r.Delete("/", h.delete)
		})
	})
}

func (h *beerHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := parseListBeersParams(r)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	page, err := h.svc.ListBeers(r.Context(), params)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	h.respond.json(w, r, http.StatusOK, newBeerPageResponse(page))
}

func (h *beerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "beerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	beer, err := h.svc.GetBeerByID(r.Context(), id)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	h.respond.json(w, r, http.StatusOK, newBeerResponse(beer))
}

func (h *beerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateBeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	beer, err := h.svc.CreateBeer(r.Context(), service.CreateBeerParams{
		BeerName:       req.BeerName,
		BeerStyle:      req.BeerStyle,
		UPC:            req.UPC,
		QuantityOnHand: req.QuantityOnHand,
		Price:          req.Price,
	})
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/beers/%s", beer.ID))
	h.respond.json(w, r, http.StatusCreated, newBeerResponse(beer))
}

func (h *beerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "beerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	var req UpdateBeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if _, err := h.svc.UpdateBeerByID(r.Context(), id, service.UpdateBeerParams{
		Version:        req.Version,
		BeerName:       req.BeerName,
		BeerStyle:      req.BeerStyle,
		UPC:            req.UPC,
		QuantityOnHand: req.QuantityOnHand,
		Price:          req.Price,
	}); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *beerHandler) patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "beerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	var req PatchBeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if _, err := h.svc.PatchBeerByID(r.Context(), id, service.PatchBeerParams{
		Version:        req.Version,
		BeerName:       req.BeerName,
		BeerStyle:      req.BeerStyle,
		UPC:            req.UPC,
		QuantityOnHand: req.QuantityOnHand,
		Price:          req.Price,
	}); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *beerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "beerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	if _, err := h.svc.DeleteBeerByID(r.Context(), id); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseListBeersParams(r *http.Request) (service.ListBeersParams, error) {
	var params service.ListBeersParams
	q := r.URL.Query()

	if v := q.Get("beer_name"); v != "" {
		params.BeerName = &v
	}
	if v := q.Get("beer_style"); v != "" {
		style := model.BeerStyle(v)
		if err := style.Validate(); err != nil {
			return params, apperr.ValidationErr.WrapParent(err)
		}
		params.BeerStyle = &style
	}

	var err error
	if params.PageNumber, err = parseIntQuery(q.Get("page_number"), "page_number"); err != nil {
		return params, err
	}
	if params.PageSize, err = parseIntQuery(q.Get("page_size"), "page_size"); err != nil {
		return params, err
	}

	return params, nil
}

func parseIntQuery(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.ValidationErr.WrapParent(fmt.Errorf("invalid %s: %q", name, raw))
	}

	return &v, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(fmt.Errorf("invalid %s: %w", name, err))
	}

	return id, nil
}
