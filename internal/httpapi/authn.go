package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"slicehub.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withIdentity is the request identity resolver. It runs once per inbound
// request, before any route logic. A missing Authorization header yields an
// anonymous request, not an error; so does any credential that fails the
// session registry check or signature verification — the caller learns
// nothing about which check failed. Only a credential that passes both
// attaches a principal (and the raw credential, for later revocation).
func (a *API) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		credential, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := a.auth.Identify(r.Context(), credential)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredential) {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithCredential(ctx, credential)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerFromContext adapts the optional principal to the authorization
// engine's nullable caller.
func callerFromContext(r *http.Request) *auth.Principal {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return &p
	}
	return nil
}

// authorize runs the capability check and writes the denial when it fails:
// a uniform 401 for anonymous callers, a 403 with the action-specific reason
// for insufficiently scoped ones. It returns true when the request may
// proceed.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, action auth.Action, resource auth.Resource, reason string) bool {
	switch err := auth.Authorize(callerFromContext(r), action, resource); {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, reason)
	default:
		writeError(w, r, http.StatusInternalServerError, "authorization error")
	}
	return false
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
