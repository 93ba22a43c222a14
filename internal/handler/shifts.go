package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
)

func (h *Handler) GetAllShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.store.GetAllShifts(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts retrieved", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	h.successResponse(w, r, "shift retrieved", shift)
}

// checkReferences 确认请求中引用的成员和班次类型存在。
// 存储层本身不做外键检查，这里只拦截新写入的悬空引用。
func (h *Handler) checkReferences(ctx context.Context, teamMemberID, shiftTypeID *int64) ([]FieldError, error) {
	errs := make([]FieldError, 0)

	if teamMemberID != nil {
		if _, err := h.store.GetTeamMemberByID(ctx, *teamMemberID); err != nil {
			if !errors.Is(err, repository.ErrRecordNotFound) {
				return nil, err
			}
			errs = append(errs, FieldError{Field: "teamMemberId", Message: fmt.Sprintf("team member %d does not exist", *teamMemberID)})
		}
	}

	if shiftTypeID != nil {
		if _, err := h.store.GetShiftTypeByID(ctx, *shiftTypeID); err != nil {
			if !errors.Is(err, repository.ErrRecordNotFound) {
				return nil, err
			}
			errs = append(errs, FieldError{Field: "shiftTypeId", Message: fmt.Sprintf("shift type %d does not exist", *shiftTypeID)})
		}
	}

	return errs, nil
}

// notifyCoverageNeeded 把顶班提醒投递到邮件队列，失败只记录日志，不影响写操作的结果
func (h *Handler) notifyCoverageNeeded(ctx context.Context, shift *domain.Shift) {
	recipient := h.config.Email.CoverageRecipient
	if recipient == "" {
		return
	}

	st, err := h.store.GetShiftTypeByID(ctx, shift.ShiftTypeID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			slog.Warn("查询班次类型失败", "shiftTypeID", shift.ShiftTypeID, "error", err)
		}
		st = domain.PlaceholderShiftType()
	}

	msg := &domain.MailMessage{
		Type: domain.MailTypeCoverageNeeded,
		To:   recipient,
		Data: domain.CoverageNeededMailData{
			ShiftID:       shift.ID,
			Date:          shift.Date.String(),
			ShiftTypeName: st.Name,
			StartTime:     st.StartTime,
			EndTime:       st.EndTime,
			Notes:         shift.Notes,
		},
	}

	if err := h.publisher.PublishMail(ctx, msg); err != nil {
		slog.Error("投递顶班提醒邮件失败", "shiftID", shift.ID, "error", err)
		return
	}

	slog.Info("已投递顶班提醒邮件", "shiftID", shift.ID, "to", recipient)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date          string  `json:"date" validate:"required,civildate"`
		TeamMemberID  *int64  `json:"teamMemberId"`
		ShiftTypeID   *int64  `json:"shiftTypeId" validate:"required"`
		Notes         *string `json:"notes"`
		NeedsCoverage *bool   `json:"needsCoverage"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	errs, err := h.checkReferences(r.Context(), req.TeamMemberID, req.ShiftTypeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	// civildate 已经保证格式正确
	date, _ := domain.ParseDate(req.Date)

	shift := &domain.Shift{
		Date:         date,
		TeamMemberID: req.TeamMemberID,
		ShiftTypeID:  *req.ShiftTypeID,
		Notes:        req.Notes,
	}
	if req.NeedsCoverage != nil {
		shift.NeedsCoverage = *req.NeedsCoverage
	}

	if err := h.store.CreateShift(r.Context(), shift); err != nil {
		h.storeError(w, r, err, "shift not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	if shift.NeedsCoverage {
		h.notifyCoverageNeeded(r.Context(), shift)
	}

	h.createdResponse(w, r, "shift created", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Date          *string `json:"date" validate:"omitnil,civildate"`
		TeamMemberID  *int64  `json:"teamMemberId"`
		ShiftTypeID   *int64  `json:"shiftTypeId"`
		Notes         *string `json:"notes"`
		NeedsCoverage *bool   `json:"needsCoverage"`
	}

	fields, ok := h.readPatch(w, r, &req)
	if !ok {
		return
	}
	if errs := fields.nonNullable("date", "shiftTypeId", "needsCoverage"); len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	patch := &domain.ShiftPatch{
		TeamMemberID:  optional(fields, "teamMemberId", req.TeamMemberID),
		ShiftTypeID:   req.ShiftTypeID,
		Notes:         optional(fields, "notes", req.Notes),
		NeedsCoverage: req.NeedsCoverage,
	}
	if req.Date != nil {
		date, _ := domain.ParseDate(*req.Date)
		patch.Date = &date
	}
	if patch.IsEmpty() {
		h.emptyPatch(w, r)
		return
	}

	errs, err := h.checkReferences(r.Context(), patch.TeamMemberID.Value, patch.ShiftTypeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(errs) > 0 {
		h.validationFailed(w, r, errs)
		return
	}

	updated, err := h.store.UpdateShift(r.Context(), shift.ID, patch)
	if err != nil {
		h.storeError(w, r, err, "shift not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	if !shift.NeedsCoverage && updated.NeedsCoverage {
		h.notifyCoverageNeeded(r.Context(), updated)
	}

	h.successResponse(w, r, "shift updated", updated)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	ok, err := h.store.DeleteShift(r.Context(), shift.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.notFound(w, r, "shift not found")
		return
	}

	h.aggregator.Invalidate(r.Context())

	h.noContent(w)
}
