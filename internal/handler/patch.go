package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// patchBody 记录 PATCH 请求体中出现的字段，用来区分「未提供」和「显式 null」
type patchBody map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// readPatch 同时把请求体解码为字段表和请求结构体，并执行结构体上的校验规则。
// 请求结构体的字段都应是指针，配合 omitnil 使用。
func (h *Handler) readPatch(w http.ResponseWriter, r *http.Request, req any) (patchBody, bool) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	fields := patchBody{}
	if err := json.Unmarshal(body, &fields); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	if err := json.Unmarshal(body, req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}

	return fields, true
}

// nonNullable 返回被显式设为 null 的不可空字段
func (p patchBody) nonNullable(keys ...string) []FieldError {
	errs := make([]FieldError, 0)
	for _, k := range keys {
		if raw, ok := p[k]; ok && isNull(raw) {
			errs = append(errs, FieldError{Field: k, Message: k + " must not be null"})
		}
	}
	return errs
}

func optional[T any](p patchBody, key string, v *T) domain.Optional[T] {
	raw, ok := p[key]
	if !ok {
		return domain.Optional[T]{}
	}
	if isNull(raw) || v == nil {
		return domain.Null[T]()
	}
	return domain.Some(*v)
}

func (h *Handler) emptyPatch(w http.ResponseWriter, r *http.Request) {
	h.validationFailed(w, r, []FieldError{{Field: "body", Message: "at least one updatable field is required"}})
}
