package handlers

import (
	"errors"
	"net/http"

	"github.com/avelkov/cloudnest/internal/api/middleware"
	"github.com/avelkov/cloudnest/internal/config"
	"github.com/avelkov/cloudnest/internal/models"
	"github.com/avelkov/cloudnest/internal/repositories"
	"github.com/avelkov/cloudnest/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// POST /register
// RegisterUser godoc
// @Summary Register a new account
// @Description Creates a user from form fields username, password, email. The password must satisfy the acceptance policy.
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param email formData string true "Email"
// @Success 303 "Redirects to /login"
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /register [post]
func RegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	email := r.PostFormValue("email")

	if username == "" || password == "" || email == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if err := utils.ValidatePassword(password); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	// Check for an existing username or email before inserting
	var existing models.User
	err := repositories.DB.WithContext(r.Context()).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error

	switch {
	case err == nil:
		utils.JSONResponse(w, http.StatusConflict, utils.Payload{
			Success: false,
			Message: "Username or email already exists",
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
				Success: false,
				Message: "Failed to hash password",
			})
			return
		}

		newUser := models.User{
			ID:       uuid.New(),
			Username: username,
			Email:    email,
			Password: string(hashedPassword),
		}
		if createErr := repositories.DB.WithContext(r.Context()).Create(&newUser).Error; createErr != nil {
			// Lost the race against a concurrent registration of the same
			// username/email: the unique indexes reject the insert.
			utils.JSONResponse(w, http.StatusConflict, utils.Payload{
				Success: false,
				Message: "Username or email already exists",
			})
			return
		}

	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// POST /login
// LoginUser godoc
// @Summary Log in
// @Description Verifies credentials and establishes a session cookie. The optional "remember" field extends the session window.
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param remember formData string false "Remember me"
// @Success 303 "Redirects to /"
// @Failure 401 {object} utils.Payload
// @Router /login [post]
func LoginUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	remember := rememberRequested(r.PostFormValue("remember"))

	if username == "" || password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	var user models.User
	err := repositories.DB.WithContext(r.Context()).
		Where("username = ?", username).
		First(&user).Error
	switch {
	case err == nil:
		// user found
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Same message as a bad password: do not reveal which field was wrong.
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database error",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	if config.Envs.JWTSecret == "" {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "No config found for JWT",
		})
		return
	}

	cookie, err := middleware.NewSessionCookie(user.ID.String(), user.Username, remember)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to create session",
		})
		return
	}
	http.SetCookie(w, cookie)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /logout
// Logout godoc
// @Summary End the session
// @Tags Auth
// @Success 303 "Redirects to /login"
// @Router /logout [get]
func Logout(w http.ResponseWriter, r *http.Request) {
	isProd := config.Envs.Environment == "production"

	// Delete the token cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   isProd,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func rememberRequested(value string) bool {
	switch value {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
