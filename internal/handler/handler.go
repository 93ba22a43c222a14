package handler

import (
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/queue"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/utils"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      repository.Store
	aggregator *schedule.Aggregator
	publisher  queue.Publisher
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store repository.Store, agg *schedule.Aggregator, pub queue.Publisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 错误信息中使用 JSON 字段名而不是 Go 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, err
	}

	if pub == nil {
		pub = queue.Nop{}
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		aggregator: agg,
		publisher:  pub,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	customs := []struct {
		tag     string
		message string
		fn      func(string) bool
	}{
		{"wallclock", "{0} must be in HH:MM:SS format", utils.IsWallClock},
		{"civildate", "{0} must be in YYYY-MM-DD format", utils.IsCivilDate},
	}

	for _, c := range customs {
		fn := c.fn
		if err := validate.RegisterValidation(c.tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return err
		}

		tag, message := c.tag, c.message
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		}); err != nil {
			return err
		}
	}

	return nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(h.auth).Get("/me", h.GetMe)
		r.With(h.auth).Patch("/me/password", h.UpdateMyPassword)
	})

	// 账号管理总是需要登录
	h.Mux.Route("/users", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/", h.GetAllUsers)
		r.Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.user)
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})

	// 只有开启 AUTH_REQUIRED 时以下 API 才需要登录
	h.Mux.Group(func(r chi.Router) {
		if h.config.AuthRequired {
			r.Use(h.auth)
		}

		r.Route("/team-members", func(r chi.Router) {
			r.Get("/", h.GetAllTeamMembers)
			r.Post("/", h.CreateTeamMember)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.teamMember)
				r.Get("/", h.GetTeamMember)
				r.Patch("/", h.UpdateTeamMember)
				r.Delete("/", h.DeleteTeamMember)
			})
		})

		r.Route("/shift-types", func(r chi.Router) {
			r.Get("/", h.GetAllShiftTypes)
			r.Post("/", h.CreateShiftType)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftType)
				r.Get("/", h.GetShiftType)
				r.Patch("/", h.UpdateShiftType)
				r.Delete("/", h.DeleteShiftType)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetAllShifts)
			r.Post("/", h.CreateShift)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.Get("/", h.GetShift)
				r.Patch("/", h.UpdateShift)
				r.Delete("/", h.DeleteShift)
			})
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/week", h.GetWeekSchedule)
			r.Get("/week/export", h.ExportWeekSchedule)
		})
	})
}
