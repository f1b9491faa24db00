package httpapi

import (
	"net/http"
	"strings"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/obs"
)

type updateUserRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/user/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id == "me" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.currentUser(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, id)
	case http.MethodPut:
		a.updateUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := a.auth.Account(r.Context(), p.ID)
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	if !a.authorize(w, r, auth.ActionReadUser, auth.Resource{Kind: auth.ResourceUser, Scope: id}, "unable to read user") {
		return
	}
	account, err := a.auth.Account(r.Context(), id)
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// updateUser mutates name/email/secret (each independently optional) and
// returns the refreshed credential: the mutation supersedes the account's
// live session, so the response token is the only one that keeps working.
func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	if !a.authorize(w, r, auth.ActionUpdateUser, auth.Resource{Kind: auth.ResourceUser, Scope: id}, "unable to update user") {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	account, token, err := a.auth.Update(r.Context(), id, req.Name, req.Email, req.Password)
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	_ = obs.Event("auth.reissued", account.ID, nil)
	writeJSON(w, http.StatusOK, credentialResponse{User: account, Token: token})
}
