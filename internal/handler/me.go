package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(SubCtxKey).(int64)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=6"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	me, err := h.store.GetUserByID(r.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			h.unauthorized(w, r, "user no longer exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(me.Password), []byte(req.OldPassword)); err != nil {
		h.validationFailed(w, r, []FieldError{{Field: "oldPassword", Message: "old password is incorrect"}})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	hash := string(hashedPassword)

	if _, err := h.store.UpdateUser(r.Context(), me.ID, &domain.UserPatch{Password: &hash}); err != nil {
		h.storeError(w, r, err, "user not found")
		return
	}

	h.successResponse(w, r, "password updated", nil)
}
