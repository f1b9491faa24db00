package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/obs"
	"slicehub.org/internal/ordering"
)

type createFranchiseRequest struct {
	Name string `json:"name"`
}

type createStoreRequest struct {
	Name string `json:"name"`
}

func (a *API) handleFranchiseCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listFranchises(w, r)
	case http.MethodPost:
		a.createFranchise(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listFranchises(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, auth.ActionListFranchises, auth.Resource{Kind: auth.ResourceFranchise}, "unable to list franchises") {
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
	franchises, err := a.ordering.ListFranchises(r.Context(), limit, offset)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"franchises": franchises})
}

func (a *API) createFranchise(w http.ResponseWriter, r *http.Request) {
	if !a.authorize(w, r, auth.ActionCreateFranchise, auth.Resource{Kind: auth.ResourceFranchise}, "unable to create a franchise") {
		return
	}
	var req createFranchiseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	franchise, err := a.ordering.CreateFranchise(r.Context(), req.Name)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	caller := callerFromContext(r)
	_ = obs.Event("franchise.created", caller.ID, map[string]any{"franchise_id": franchise.ID})
	writeJSON(w, http.StatusCreated, franchise)
}

// handleFranchiseResource dispatches the sub-tree under /api/franchise/:
//
//	GET    /api/franchise/{userId}
//	DELETE /api/franchise/{id}
//	POST   /api/franchise/{id}/store
//	DELETE /api/franchise/{id}/store/{storeId}
func (a *API) handleFranchiseResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/franchise/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		switch r.Method {
		case http.MethodGet:
			a.franchisesForUser(w, r, parts[0])
		case http.MethodDelete:
			a.deleteFranchise(w, r, parts[0])
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "store":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.createStore(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "store":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.deleteStore(w, r, parts[0], parts[2])
	default:
		http.NotFound(w, r)
	}
}

// franchisesForUser lists the franchises a given account operates. Rather
// than rejecting a caller who asks about someone else, the handler degrades
// to an empty list: the response shape stays constant and the existence of
// other accounts' holdings is not leaked.
func (a *API) franchisesForUser(w http.ResponseWriter, r *http.Request, userID string) {
	caller := callerFromContext(r)
	if caller == nil {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var grants []auth.RoleGrant
	switch {
	case caller.ID == userID:
		grants = caller.Roles
	case caller.IsAdmin():
		account, err := a.auth.Account(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, auth.ErrNotFound) {
				writeError(w, r, http.StatusInternalServerError, "internal error")
				return
			}
		} else {
			grants = account.Roles
		}
	}

	franchises, err := a.ordering.FranchisesOperatedBy(r.Context(), grants)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	if franchises == nil {
		franchises = []ordering.Franchise{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"franchises": franchises})
}

func (a *API) deleteFranchise(w http.ResponseWriter, r *http.Request, id string) {
	if !a.authorize(w, r, auth.ActionDeleteFranchise, auth.Resource{Kind: auth.ResourceFranchise, Scope: id}, "unable to delete a franchise") {
		return
	}
	if err := a.ordering.DeleteFranchise(r.Context(), id); err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	caller := callerFromContext(r)
	_ = obs.Event("franchise.deleted", caller.ID, map[string]any{"franchise_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"message": "franchise deleted"})
}

func (a *API) createStore(w http.ResponseWriter, r *http.Request, franchiseID string) {
	if !a.authorize(w, r, auth.ActionCreateStore, auth.Resource{Kind: auth.ResourceStore, Scope: franchiseID}, "unable to create a store") {
		return
	}
	var req createStoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	store, err := a.ordering.CreateStore(r.Context(), franchiseID, req.Name)
	if err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, store)
}

func (a *API) deleteStore(w http.ResponseWriter, r *http.Request, franchiseID, storeID string) {
	if !a.authorize(w, r, auth.ActionDeleteStore, auth.Resource{Kind: auth.ResourceStore, Scope: franchiseID}, "unable to delete a store") {
		return
	}
	if err := a.ordering.DeleteStore(r.Context(), franchiseID, storeID); err != nil {
		a.handleOrderingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "store deleted"})
}
