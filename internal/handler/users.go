package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// 登录账号管理，与团队成员是两类实体，成员通过 userId 关联账号

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "users retrieved", users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserCtx).(*domain.User)
	h.successResponse(w, r, "user retrieved", user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 对密码进行哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		Username: req.Username,
		Password: string(hashedPassword),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.storeError(w, r, err, "user not found")
		return
	}

	h.createdResponse(w, r, "user created", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserCtx).(*domain.User)

	var req struct {
		Username *string `json:"username" validate:"omitnil,min=1"`
		Password *string `json:"password" validate:"omitnil,min=6"`
	}

	fields, ok := h.readPatch(w, r, &req)
	if !ok {
		return
	}
	if errs := fields.nonNullable("username", "password"); len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	patch := &domain.UserPatch{Username: req.Username}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		hash := string(hashedPassword)
		patch.Password = &hash
	}
	if patch.IsEmpty() {
		h.emptyPatch(w, r)
		return
	}

	updated, err := h.store.UpdateUser(r.Context(), user.ID, patch)
	if err != nil {
		h.storeError(w, r, err, "user not found")
		return
	}

	h.successResponse(w, r, "user updated", updated)
}

// 不允许删除当前登录的账号，避免把自己锁在系统外
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserCtx).(*domain.User)

	if sub, _ := r.Context().Value(SubCtxKey).(int64); sub == user.ID {
		h.validationFailed(w, r, []FieldError{{Field: "id", Message: "cannot delete the current user"}})
		return
	}

	ok, err := h.store.DeleteUser(r.Context(), user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.notFound(w, r, "user not found")
		return
	}

	h.noContent(w)
}
