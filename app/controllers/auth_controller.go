package controllers

import (
	"errors"
	"net/http"
	"strings"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/logger"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

const loginRedirectURL = "/"

// AuthController handles sign up, log in and the password flows
type AuthController struct {
	Controller
	users    *services.UserService
	sessions *auth.SessionManager
	baseURL  string
}

// NewAuthController creates a new AuthController. baseURL prefixes the links in
// reset emails; when empty the request host is used.
func NewAuthController(renderer views.Renderer, svc *services.Services, sessions *auth.SessionManager, baseURL string) *AuthController {
	return &AuthController{
		Controller: Controller{renderer: renderer},
		users:      svc.Users,
		sessions:   sessions,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SignUp registers a new account and sends the visitor to the main page
func (ac *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/signup.html", views.Context{"form": &forms.SignupForm{}})
		return
	}

	form := forms.ParseSignupForm(r)
	if form.Validate() {
		_, err := ac.users.SignUp(form)
		switch {
		case err == nil:
			redirect(w, r, loginRedirectURL)
			return
		case errors.Is(err, services.ErrUsernameTaken):
			form.AddError("username", "A user with that username already exists.")
		default:
			ac.serverError(w, r, err)
			return
		}
	}
	ac.render(w, r, http.StatusOK, "users/signup.html", views.Context{"form": form})
}

// Login authenticates a user and starts a session
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/login.html", views.Context{
			"form": &forms.LoginForm{},
			"next": r.URL.Query().Get("next"),
		})
		return
	}

	form := forms.ParseLoginForm(r)
	next := r.PostFormValue("next")
	if form.Validate() {
		user, err := ac.users.Authenticate(form.Username, form.Password)
		switch {
		case err == nil:
			if err := ac.sessions.Login(w, user); err != nil {
				ac.serverError(w, r, err)
				return
			}
			logger.Info().Str("username", user.Username).Msg("User logged in")
			redirect(w, r, safeNext(next))
			return
		case errors.Is(err, services.ErrInvalidCredentials):
			form.AddError(forms.NonField, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		default:
			ac.serverError(w, r, err)
			return
		}
	}
	ac.render(w, r, http.StatusOK, "users/login.html", views.Context{"form": form, "next": next})
}

// Logout ends the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.Logout(w)
	r = r.WithContext(auth.WithUser(r.Context(), nil))
	ac.render(w, r, http.StatusOK, "users/logged_out.html", nil)
}

// PasswordChange lets a logged in user choose a new password
func (ac *AuthController) PasswordChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/password_change_form.html", views.Context{"form": &forms.PasswordChangeForm{}})
		return
	}

	form := forms.ParsePasswordChangeForm(r)
	if form.Validate() {
		user, err := ac.users.ChangePassword(auth.UserFromContext(r.Context()), form.OldPassword, form.NewPassword1)
		switch {
		case err == nil:
			if err := ac.sessions.Login(w, user); err != nil {
				ac.serverError(w, r, err)
				return
			}
			redirect(w, r, "/auth/password_change/done/")
			return
		case errors.Is(err, services.ErrInvalidCredentials):
			form.AddError("old_password", "Your old password was entered incorrectly. Please enter it again.")
		default:
			ac.serverError(w, r, err)
			return
		}
	}
	ac.render(w, r, http.StatusOK, "users/password_change_form.html", views.Context{"form": form})
}

func (ac *AuthController) PasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "users/password_change_done.html", nil)
}

// PasswordReset mails a reset link. The response is the same whether or not
// the address belongs to an account.
func (ac *AuthController) PasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/password_reset_form.html", views.Context{"form": &forms.PasswordResetForm{}})
		return
	}

	form := forms.ParsePasswordResetForm(r)
	if !form.Validate() {
		ac.render(w, r, http.StatusOK, "users/password_reset_form.html", views.Context{"form": form})
		return
	}
	if err := ac.users.RequestPasswordReset(form.Email, ac.siteURL(r)); err != nil {
		ac.serverError(w, r, err)
		return
	}
	redirect(w, r, "/auth/password_reset/done/")
}

func (ac *AuthController) PasswordResetDone(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "users/password_reset_done.html", nil)
}

// PasswordResetConfirm sets a new password from an emailed link. Invalid or
// used links render the page with validlink false.
func (ac *AuthController) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	uidb64, token := vars["uidb64"], vars["token"]

	if _, err := ac.users.CheckResetToken(uidb64, token); err != nil {
		ac.render(w, r, http.StatusOK, "users/password_reset_confirm.html", views.Context{
			"form":      &forms.SetPasswordForm{},
			"validlink": false,
		})
		return
	}

	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/password_reset_confirm.html", views.Context{
			"form":      &forms.SetPasswordForm{},
			"validlink": true,
		})
		return
	}

	form := forms.ParseSetPasswordForm(r)
	validlink := true
	if form.Validate() {
		err := ac.users.ResetPassword(uidb64, token, form.NewPassword1)
		switch {
		case err == nil:
			redirect(w, r, "/auth/reset/done/")
			return
		case errors.Is(err, services.ErrInvalidToken):
			validlink = false
		default:
			ac.serverError(w, r, err)
			return
		}
	}
	ac.render(w, r, http.StatusOK, "users/password_reset_confirm.html", views.Context{
		"form":      form,
		"validlink": validlink,
	})
}

func (ac *AuthController) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "users/password_reset_complete.html", nil)
}

func (ac *AuthController) siteURL(r *http.Request) string {
	if ac.baseURL != "" {
		return ac.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return loginRedirectURL
	}
	return next
}
