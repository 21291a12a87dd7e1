package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/palmcourt/hotel-admin/internal/config"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	now         func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		now:         time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.metrics)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())
	h.Mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.config.Storage.UploadDir))))

	h.Mux.Route(h.config.Server.APIPrefix, func(r chi.Router) {
		// 认证相关
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.With(h.auth).Post("/logout", h.Logout)
		})

		// 以下 API 必须要在登录后才允许调用
		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Use(h.myInfo)

			r.Get("/me", h.GetMyInfo)
			r.Patch("/me/password", h.UpdateMyPassword)

			r.Route("/dining", func(r chi.Router) {
				r.Route("/categories", func(r chi.Router) {
					r.Get("/", h.GetAllCategories)
					r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateCategory)
					r.Route("/{id}", func(r chi.Router) {
						r.Use(h.category)
						r.Get("/", h.GetCategory)
						r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateCategory)
						r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteCategory)
					})
				})

				r.Route("/menu", func(r chi.Router) {
					r.Get("/", h.GetAllMenuItems)
					r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateMenuItem)
					r.Route("/{id}", func(r chi.Router) {
						r.Use(h.menuItem)
						r.Get("/", h.GetMenuItem)
						r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateMenuItem)
						r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteMenuItem)
						// 厨师也可以在售罄时下架菜品
						r.Patch("/availability", h.ToggleMenuItemAvailability)
					})
				})

				r.Get("/getrosterbydate", h.GetRosterByDate)
				r.Get("/range", h.GetRosterRange)
				r.Post("/dailyroster", h.UpsertDailyRoster)
			})
		})
	})
}
