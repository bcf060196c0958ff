package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/andrebq/toolshelf/auth"
	"github.com/andrebq/toolshelf/internal/httpserver"
)

type (
	credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

const maxCredentialsBody = 16 << 10

// Mount adds the account endpoints to router.
func (s *SecurityRealm) Mount(router *httprouter.Router) {
	router.HandlerFunc("POST", "/api/register", s.register)
	router.HandlerFunc("POST", "/api/login", s.login)
	router.HandlerFunc("POST", "/api/logout", s.logout)
	router.HandlerFunc("GET", "/api/user", s.user)
}

func (s *SecurityRealm) register(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	passwd := auth.PlainText(c.Password)
	defer passwd.Zero()
	acc, sid, err := s.auth.Register(r.Context(), c.Username, passwd)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.setCookie(w, sid)
	httpserver.WriteJSON(w, http.StatusCreated, acc.Public())
}

func (s *SecurityRealm) login(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r)
	if !ok {
		return
	}
	passwd := auth.PlainText(c.Password)
	defer passwd.Zero()
	acc, sid, err := s.auth.Login(r.Context(), c.Username, passwd)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	s.setCookie(w, sid)
	httpserver.WriteJSON(w, http.StatusOK, acc.Public())
}

func (s *SecurityRealm) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionID(r)); err != nil {
		WriteError(w, r, err)
		return
	}
	s.clearCookie(w)
	httpserver.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *SecurityRealm) user(w http.ResponseWriter, r *http.Request) {
	acc, err := s.auth.CurrentUser(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, acc.Public())
}

func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCredentialsBody))
	if err := dec.Decode(&c); err != nil {
		httpserver.WriteInvalid(w, "Invalid request body", nil)
		return credentials{}, false
	}
	return c, true
}
