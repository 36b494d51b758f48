package server

import (
	"net/http"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/rs/zerolog"
)

const (
	tabLogin    = "login"
	tabRegister = "register"
)

// authPageContent backs auth.html. Passwords are never echoed back.
type authPageContent struct {
	Tab         string
	Login       string
	Register    authsession.RegisterForm
	HasTestData bool
}

func (s *Server) renderAuth(w http.ResponseWriter, r *http.Request, status int, content authPageContent, err error) {
	content.Register.Password = ""
	content.Register.PasswordConfirm = ""
	if content.Tab != tabRegister {
		content.Tab = tabLogin
	}
	content.HasTestData = s.config.IsDev() || s.config.GetTelegramTestInitData() != ""

	data := s.page(r, "Sign in", "auth", content)
	if err != nil {
		data.Error = userMessage(err)
	}
	s.render(w, r, status, "auth.html", data)
}

// AuthPageHandler shows the login and registration forms (GET /auth).
func (s *Server) AuthPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.manager.Check(r.Context()) == authsession.StateLoggedIn {
			http.Redirect(w, r, sess.manager.User().NextOnboardingRoute(), http.StatusSeeOther)
			return
		}

		var err error
		if r.URL.Query().Get("error") == "" && errors.Is(sess.manager.LastError(), errors.ErrSessionExpired) {
			err = sess.manager.LastError()
		}
		s.renderAuth(w, r, http.StatusOK, authPageContent{Tab: r.URL.Query().Get("tab")}, err)
	}
}

// LoginHandler processes the credential form (POST /auth/login).
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		sess := sessionFrom(r)
		form := authsession.CredentialsForm{
			Login:    r.PostFormValue("login"),
			Password: r.PostFormValue("password"),
		}
		result, err := sess.manager.LoginWithCredentials(r.Context(), form)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("credential login failed")
			s.renderAuth(w, r, statusFor(err), authPageContent{Tab: tabLogin, Login: form.Login}, err)
			return
		}

		s.wishlist.Invalidate(sess.id)
		redirectSuccess(w, r, result.Route)
	}
}

// RegisterHandler processes the registration form (POST /auth/register).
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		sess := sessionFrom(r)
		form := authsession.RegisterForm{
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
			PhoneNumber:     r.PostFormValue("phone_number"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			PasswordConfirm: r.PostFormValue("password_confirm"),
			AcceptTerms:     checked(r.PostFormValue("accept_terms")),
		}
		result, err := sess.manager.Register(r.Context(), form)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("registration failed")
			s.renderAuth(w, r, statusFor(err), authPageContent{Tab: tabRegister, Register: form}, err)
			return
		}

		s.wishlist.Invalidate(sess.id)
		redirectSuccess(w, r, result.Route)
	}
}

func checked(v string) bool {
	switch v {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
