package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andrebq/toolshelf/auth"
	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/logutil"
)

type (
	SecurityRealm struct {
		auth           *auth.Authenticator
		ttl            time.Duration
		insecureCookie bool
	}

	ctxKey byte
)

const (
	SessionCookie = "toolshelf.sid"

	accountKey = ctxKey(1)
)

// NewRealm returns a realm that issues cookies valid for ttl. When
// allowHTTPCookie is set, cookies are sent without the Secure flag.
func NewRealm(a *auth.Authenticator, ttl time.Duration, allowHTTPCookie bool) *SecurityRealm {
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return &SecurityRealm{
		auth:           a,
		ttl:            ttl,
		insecureCookie: allowHTTPCookie,
	}
}

// Protect only calls sensitive for requests carrying a valid session.
func (s *SecurityRealm) Protect(sensitive http.Handler) http.Handler {
	return s.guard(sensitive, s.auth.RequireAuthenticated)
}

// ProtectAdmin only calls sensitive for sessions of admin accounts.
func (s *SecurityRealm) ProtectAdmin(sensitive http.Handler) http.Handler {
	return s.guard(sensitive, s.auth.RequireAdmin)
}

func (s *SecurityRealm) guard(sensitive http.Handler, check func(context.Context, string) (auth.Account, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, err := check(r.Context(), sessionID(r))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		sensitive.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, acc)))
	})
}

// AccountFromContext returns the account resolved by Protect or ProtectAdmin.
func AccountFromContext(ctx context.Context) (auth.Account, bool) {
	acc, ok := ctx.Value(accountKey).(auth.Account)
	return acc, ok
}

func (s *SecurityRealm) setCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		Expires:  time.Now().Add(s.ttl),
		HttpOnly: true,
		Secure:   !s.insecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SecurityRealm) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.insecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// WriteError maps the errors returned by auth to their HTTP responses.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr      auth.ValidationError
		conflict  auth.Conflict
		unauth    auth.Unauthorized
		forbidden auth.Forbidden
	)
	switch {
	case errors.As(err, &verr):
		httpserver.WriteInvalid(w, verr.Message, verr.Fields)
	case errors.As(err, &conflict):
		httpserver.WriteMessage(w, http.StatusBadRequest, conflict.Error())
	case errors.As(err, &unauth):
		httpserver.WriteMessage(w, http.StatusUnauthorized, unauth.Message)
	case errors.As(err, &forbidden):
		httpserver.WriteMessage(w, http.StatusForbidden, forbidden.Message)
	default:
		log := logutil.GetOrDefault(r.Context())
		log.Error().Str("error", err.Error()).Str("path", r.URL.Path).Msg("Unable to complete auth request")
		httpserver.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
