package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/export"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/utils"
)

// weekSchedule 解析 date 查询参数并返回对应的周排班表，缺省时取当前时间
func (h *Handler) weekSchedule(w http.ResponseWriter, r *http.Request) (*domain.WeekSchedule, bool) {
	ref := time.Now()

	if s := r.URL.Query().Get("date"); s != "" {
		t, err := utils.ParseReferenceTime(s, h.aggregator.Location())
		if err != nil {
			h.validationFailed(w, r, []FieldError{{Field: "date", Message: err.Error()}})
			return nil, false
		}
		ref = t
	}

	ws, err := h.aggregator.WeekSchedule(r.Context(), ref)
	if err != nil {
		h.internalServerError(w, r, err)
		return nil, false
	}

	return ws, true
}

func (h *Handler) GetWeekSchedule(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.weekSchedule(w, r)
	if !ok {
		return
	}

	h.successResponse(w, r, "week schedule retrieved", ws)
}

func (h *Handler) ExportWeekSchedule(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.weekSchedule(w, r)
	if !ok {
		return
	}

	// 先写入内存，出错时还能返回 JSON 错误
	var buf bytes.Buffer
	if err := export.WriteWeekSchedule(&buf, ws); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(ws)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", map[string]string{
		"storage": h.config.StorageDriver,
	})
}
