package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

func (h *Handler) GetAllTeamMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.GetAllTeamMembers(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "team members retrieved", members)
}

func (h *Handler) GetTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	h.successResponse(w, r, "team member retrieved", member)
}

func (h *Handler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string                   `json:"name" validate:"required"`
		Position  string                   `json:"position" validate:"required"`
		Email     string                   `json:"email" validate:"required,email"`
		Phone     *string                  `json:"phone"`
		AvatarURL *string                  `json:"avatarUrl"`
		Status    *domain.TeamMemberStatus `json:"status" validate:"omitnil,oneof=active pto_soon pto unavailable inactive"`
		UserID    *int64                   `json:"userId"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member := &domain.TeamMember{
		Name:      req.Name,
		Position:  req.Position,
		Email:     req.Email,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
		Status:    domain.StatusActive,
		UserID:    req.UserID,
	}
	if req.Status != nil {
		member.Status = *req.Status
	}

	if err := h.store.CreateTeamMember(r.Context(), member); err != nil {
		h.storeError(w, r, err, "team member not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.createdResponse(w, r, "team member created", member)
}

func (h *Handler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	var req struct {
		Name      *string                  `json:"name" validate:"omitnil,min=1"`
		Position  *string                  `json:"position" validate:"omitnil,min=1"`
		Email     *string                  `json:"email" validate:"omitnil,email"`
		Phone     *string                  `json:"phone"`
		AvatarURL *string                  `json:"avatarUrl"`
		Status    *domain.TeamMemberStatus `json:"status" validate:"omitnil,oneof=active pto_soon pto unavailable inactive"`
		UserID    *int64                   `json:"userId"`
	}

	fields, ok := h.readPatch(w, r, &req)
	if !ok {
		return
	}
	if errs := fields.nonNullable("name", "position", "email", "status"); len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	patch := &domain.TeamMemberPatch{
		Name:      req.Name,
		Position:  req.Position,
		Email:     req.Email,
		Phone:     optional(fields, "phone", req.Phone),
		AvatarURL: optional(fields, "avatarUrl", req.AvatarURL),
		Status:    req.Status,
		UserID:    optional(fields, "userId", req.UserID),
	}
	if patch.IsEmpty() {
		h.emptyPatch(w, r)
		return
	}

	updated, err := h.store.UpdateTeamMember(r.Context(), member.ID, patch)
	if err != nil {
		h.storeError(w, r, err, "team member not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.successResponse(w, r, "team member updated", updated)
}

func (h *Handler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(TeamMemberCtx).(*domain.TeamMember)

	ok, err := h.store.DeleteTeamMember(r.Context(), member.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		// 在加载和删除之间被其他请求删除
		h.notFound(w, r, "team member not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.noContent(w)
}
