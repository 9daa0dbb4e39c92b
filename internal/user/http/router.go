package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	commonhttp "github.com/AlibekovAA/user-service/internal/common/http"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	"github.com/AlibekovAA/user-service/internal/user/domain"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id domain.ID) (domain.User, error)
	Create(ctx context.Context, input domain.NewUser) (domain.User, error)
	Update(ctx context.Context, id domain.ID, changes domain.Changes) (domain.User, error)
	Delete(ctx context.Context, id domain.ID) error
}

// Access documents who a route is meant for. It is logged, not enforced.
type Access string

const (
	AccessPublic Access = "public"
	AccessAdmin  Access = "admin"
)

const basePath = "/api/users"

type route struct {
	method  string
	pattern string
	access  Access
	handler commonhttp.AppHandler
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

func (r *createUserRequest) FromForm(values url.Values) {
	r.Name = values.Get("name")
	r.Email = values.Get("email")
	r.Password = values.Get("password")
}

type updateUserRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r *updateUserRequest) FromForm(values url.Values) {
	r.Name = values.Get("name")
	r.Email = values.Get("email")
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        int64(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type Handler struct {
	users  UserService
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(users UserService, errors *commonhttp.ErrorHandler, log *logger.Logger) *Handler {
	return &Handler{users: users, errors: errors, log: log}
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/", AccessAdmin, h.list},
		{http.MethodPost, "/", AccessAdmin, h.create},
		{http.MethodGet, "/{id}", AccessAdmin, h.get},
		{http.MethodPut, "/{id}", AccessAdmin, h.update},
		{http.MethodDelete, "/{id}", AccessAdmin, h.delete},
	}
}

// Mount registers every user route on r under /api/users.
func (h *Handler) Mount(r chi.Router) {
	r.Route(basePath, func(r chi.Router) {
		for _, rt := range h.routes() {
			r.Method(rt.method, rt.pattern, h.errors.Wrap(rt.handler))
			h.log.Debugf("route registered: %s %s%s access=%s", rt.method, basePath, rt.pattern, rt.access)
		}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.List(context.WithoutCancel(r.Context()))
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	user, err := h.users.Get(context.WithoutCancel(r.Context()), id)
	if err != nil {
		return err
	}

	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := commonhttp.DecodeBody(r, &req); err != nil {
		return err
	}

	user, err := h.users.Create(context.WithoutCancel(r.Context()), domain.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := commonhttp.DecodeBody(r, &req); err != nil {
		return err
	}

	user, err := h.users.Update(context.WithoutCancel(r.Context()), id, domain.Changes{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}

	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	if err := h.users.Delete(context.WithoutCancel(r.Context()), id); err != nil {
		return err
	}

	commonhttp.WriteJSON(w, http.StatusOK, messageResponse{Message: "User removed"})
	return nil
}
