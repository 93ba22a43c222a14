package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

func (h *Handler) GetAllShiftTypes(w http.ResponseWriter, r *http.Request) {
	sts, err := h.store.GetAllShiftTypes(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift types retrieved", sts)
}

func (h *Handler) GetShiftType(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTypeCtx).(*domain.ShiftType)

	h.successResponse(w, r, "shift type retrieved", st)
}

// 夜班允许开始时间晚于结束时间，因此不校验两者的先后
func (h *Handler) CreateShiftType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name" validate:"required"`
		StartTime   string  `json:"startTime" validate:"required,wallclock"`
		EndTime     string  `json:"endTime" validate:"required,wallclock"`
		Color       *string `json:"color" validate:"omitnil,hexcolor"`
		Description *string `json:"description"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ShiftType{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       domain.DefaultShiftTypeColor,
		Description: req.Description,
	}
	if req.Color != nil {
		st.Color = *req.Color
	}

	if err := h.store.CreateShiftType(r.Context(), st); err != nil {
		h.storeError(w, r, err, "shift type not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.createdResponse(w, r, "shift type created", st)
}

func (h *Handler) UpdateShiftType(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTypeCtx).(*domain.ShiftType)

	var req struct {
		Name        *string `json:"name" validate:"omitnil,min=1"`
		StartTime   *string `json:"startTime" validate:"omitnil,wallclock"`
		EndTime     *string `json:"endTime" validate:"omitnil,wallclock"`
		Color       *string `json:"color" validate:"omitnil,hexcolor"`
		Description *string `json:"description"`
	}

	fields, ok := h.readPatch(w, r, &req)
	if !ok {
		return
	}
	if errs := fields.nonNullable("name", "startTime", "endTime", "color"); len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	patch := &domain.ShiftTypePatch{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Color:       req.Color,
		Description: optional(fields, "description", req.Description),
	}
	if patch.IsEmpty() {
		h.emptyPatch(w, r)
		return
	}

	updated, err := h.store.UpdateShiftType(r.Context(), st.ID, patch)
	if err != nil {
		h.storeError(w, r, err, "shift type not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.successResponse(w, r, "shift type updated", updated)
}

// 删除班次类型不会级联删除引用它的班次，这些班次在周视图中显示为 Unknown Shift
func (h *Handler) DeleteShiftType(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ShiftTypeCtx).(*domain.ShiftType)

	ok, err := h.store.DeleteShiftType(r.Context(), st.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.notFound(w, r, "shift type not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.noContent(w)
}
