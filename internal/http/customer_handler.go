package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tapcellar/beer-catalog/internal/apperr"
	"github.com/tapcellar/beer-catalog/internal/service"
)

type customerHandler struct {
	svc     service.CustomerService
	respond *responder
}

func newCustomerHandler(svc service.CustomerService, respond *responder) *customerHandler {
	return &customerHandler{svc: svc, respond: respond}
}

func (h *customerHandler) register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Patch("/", h.patch)
			r.Delete("/", h.delete)
			r.Get("/orders", h.listOrders)
			r.Post("/orders", h.createOrder)
			r.Get("/orders/{orderID}", h.getOrder)
		})
	})
}

func (h *customerHandler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	res := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		res = append(res, newCustomerResponse(c))
	}

	h.respond.json(w, r, http.StatusOK, res)
}

func (h *customerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	customer, err := h.svc.GetCustomerByID(r.Context(), id)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	h.respond.json(w, r, http.StatusOK, newCustomerResponse(customer))
}

func (h *customerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	customer, err := h.svc.CreateCustomer(r.Context(), service.CreateCustomerParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/customers/%s", customer.ID))
	h.respond.json(w, r, http.StatusCreated, newCustomerResponse(customer))
}

func (h *customerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if _, err := h.svc.UpdateCustomerByID(r.Context(), id, service.UpdateCustomerParams{
		Version: req.Version,
		Name:    req.Name,
		Email:   req.Email,
	}); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *customerHandler) patch(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	var req PatchCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if _, err := h.svc.PatchCustomerByID(r.Context(), id, service.PatchCustomerParams{
		Version: req.Version,
		Name:    req.Name,
		Email:   req.Email,
	}); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *customerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	if _, err := h.svc.DeleteCustomerByID(r.Context(), id); err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *customerHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	orders, err := h.svc.ListOrdersByCustomerID(r.Context(), id)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	res := make([]BeerOrderResponse, 0, len(orders))
	for _, order := range orders {
		res = append(res, newBeerOrderResponse(order))
	}

	h.respond.json(w, r, http.StatusOK, res)
}

func (h *customerHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}
	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	order, err := h.svc.GetOrderForCustomer(r.Context(), customerID, orderID)
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	h.respond.json(w, r, http.StatusOK, newBeerOrderResponse(order))
}

func (h *customerHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseIDParam(r, "customerID")
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	var req CreateBeerOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.error(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	lines := make([]service.CreateBeerOrderLineParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, service.CreateBeerOrderLineParams{
			BeerID:        line.BeerID,
			OrderQuantity: line.OrderQuantity,
		})
	}

	order, err := h.svc.CreateOrderForCustomer(r.Context(), customerID, service.CreateBeerOrderParams{
		CustomerRef: req.CustomerRef,
		Lines:       lines,
	})
	if err != nil {
		h.respond.error(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/customers/%s/orders/%s", customerID, order.ID))
	h.respond.json(w, r, http.StatusCreated, newBeerOrderResponse(order))
}
