package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/slot-arena/middleware"
	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/services"
	"github.com/golang-jwt/jwt/v4"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// Login godoc
// @Summary Вход администратора
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Логин и пароль"
// @Success 200 {object} map[string]interface{} "JWT и данные администратора"
// @Failure 400 {object} map[string]string "Не указан логин или пароль"
// @Failure 401 {object} map[string]string "Неверные учетные данные"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Username == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("username and password are required"))
		return
	}

	admin, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}

	tokenString, err := h.issueToken(admin)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	okResponse(w, r, http.StatusOK, "Login successful", jsonResponse{
		"token": tokenString,
		"admin": admin,
	})
}

func (h *AuthHandler) issueToken(admin *models.Admin) (string, error) {
	claims := middleware.NewAdminClaims(admin, h.tokenTTL, time.Now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Init godoc
// @Summary Создать первого администратора
// @Tags auth
// @Description Работает только пока в системе нет ни одного администратора.
// @Accept json
// @Produce json
// @Param body body services.CreateAdminInput true "Логин, пароль, email"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверные данные"
// @Failure 409 {object} map[string]string "Администратор уже существует"
// @Router /auth/init [post]
func (h *AuthHandler) Init(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAdminInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	admin, err := h.authService.Bootstrap(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err, http.StatusConflict)
		return
	}
	okResponse(w, r, http.StatusCreated, "Admin created successfully", jsonResponse{"admin": admin})
}

// Logout godoc
// @Summary Выход администратора
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	okResponse(w, r, http.StatusOK, "Logged out", nil)
}
