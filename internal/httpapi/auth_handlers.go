package httpapi

import (
	"errors"
	"net/http"

	"slicehub.org/internal/auth"
	"slicehub.org/internal/obs"
)

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Roles    []roleGrant `json:"roles,omitempty"`
}

type roleGrant struct {
	Kind  string `json:"kind"`
	Scope string `json:"scope,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialResponse struct {
	User  *auth.Account `json:"user"`
	Token string        `json:"token"`
}

func (a *API) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.register(w, r)
	case http.MethodPut:
		a.login(w, r)
	case http.MethodDelete:
		a.logout(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	grants, elevated, err := parseGrants(req.Roles)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Self-registration always yields the base diner role; only a global
	// administrator may grant anything else.
	if elevated {
		caller := callerFromContext(r)
		if caller == nil {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !caller.IsAdmin() {
			writeError(w, r, http.StatusForbidden, "unable to grant roles")
			return
		}
	}

	account, token, err := a.auth.Register(r.Context(), req.Name, req.Email, req.Password, grants)
	if err != nil {
		a.handleAuthError(w, r, err)
		return
	}
	_ = obs.Event("auth.registered", account.ID, map[string]any{"email": account.Email})
	writeJSON(w, http.StatusOK, credentialResponse{User: account, Token: token})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	account, token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			// Unknown email and wrong secret are indistinguishable.
			writeError(w, r, http.StatusNotFound, "unknown user")
			return
		}
		a.handleAuthError(w, r, err)
		return
	}
	_ = obs.Event("auth.login", account.ID, nil)
	writeJSON(w, http.StatusOK, credentialResponse{User: account, Token: token})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	credential, ok := auth.CredentialFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := a.auth.Logout(r.Context(), credential); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		_ = obs.Event("auth.logout", p.ID, nil)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "logout successful"})
}

func parseGrants(raw []roleGrant) ([]auth.RoleGrant, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	grants := make([]auth.RoleGrant, 0, len(raw))
	elevated := false
	for _, g := range raw {
		kind, ok := auth.ParseRoleKind(g.Kind)
		if !ok {
			return nil, false, errors.New("unknown role kind: " + g.Kind)
		}
		if kind != auth.RoleDiner {
			elevated = true
		}
		if kind == auth.RoleFranchisee && g.Scope == "" {
			return nil, false, errors.New("franchisee grants require a franchise scope")
		}
		grants = append(grants, auth.RoleGrant{Kind: kind, Scope: g.Scope})
	}
	return grants, elevated, nil
}

func (a *API) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
