package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const tokenCookieName = "__team_schedule_token"

type AuthClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证用户名和密码
	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			h.unauthorized(w, r, "invalid username or password")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrHashTooShort):
			h.unauthorized(w, r, "invalid username or password")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 生成 JWT
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, "logged in", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
	})

	h.successResponse(w, r, "logged out", nil)
}

// GetMe 返回当前登录的用户，以及 userId 指向该用户的成员（如果有）
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(SubCtxKey).(int64)

	user, err := h.store.GetUserByID(r.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			// 令牌有效但用户已被删除
			h.unauthorized(w, r, "user no longer exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	members, err := h.store.GetAllTeamMembers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var member *domain.TeamMember
	for _, m := range members {
		if m.UserID != nil && *m.UserID == user.ID {
			member = m
			break
		}
	}

	h.successResponse(w, r, "current user retrieved", map[string]any{
		"user":       user,
		"teamMember": member,
	})
}
