package httpapi

import (
	"errors"
	"net/http"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/ordering"
)

type addMenuItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Price       int64  `json:"price"`
}

func (a *API) handleMenu(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listMenu(w, r)
	case http.MethodPut:
		a.addMenuItem(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) listMenu(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, auth.ActionListMenu, auth.Resource{Kind: auth.ResourceMenu}, "unable to list menu") {
		return
	}
	menu, err := a.ordering.Menu(r.Context())
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"menu": menu})
}

func (a *API) addMenuItem(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, auth.ActionAddMenuItem, auth.Resource{Kind: auth.ResourceMenu}, "unable to add menu item") {
		return
	}
	var req addMenuItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	item, err := a.ordering.AddMenuItem(r.Context(), req.Title, req.Description, req.Image, req.Price)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listOrders(w, r)
	case http.MethodPost:
		a.placeOrder(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)
	if caller == nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.authorize(w, r, auth.ActionListOrders, auth.Resource{Kind: auth.ResourceOrder, Scope: caller.ID}, "unable to list orders") {
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 20, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	offset, err := parsePositiveInt(r.URL.Query().Get("offset"), 0, 0, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	orders, err := a.ordering.Orders(r.Context(), caller.ID, limit, offset)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// placeOrder runs the fulfillment coordinator. A failed factory delegation
// is a fatal-class outcome distinct from client errors: the order stays
// persisted and the response carries the tracking reference.
func (a *API) placeOrder(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)
	if caller == nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.authorize(w, r, auth.ActionPlaceOrder, auth.Resource{Kind: auth.ResourceOrder, Scope: caller.ID}, "unable to place order") {
		return
	}
	var req ordering.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := a.ordering.Place(r.Context(), *caller, req)
	if err != nil {
		var fErr *ordering.FulfillmentError
		if errors.As(err, &fErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":      fErr.Error(),
				"report_url": fErr.Report,
				"request_id": RequestIDFromContext(r.Context()),
			})
			return
		}
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (a *API) handleOrderingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ordering.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ordering.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
