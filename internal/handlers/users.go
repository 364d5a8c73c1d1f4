package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WadsonGarbes/formaplus-api/internal/apierror"
	"github.com/WadsonGarbes/formaplus-api/internal/middleware"
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users     *services.Users
	questions *services.Questions
}

func NewUserHandler(users *services.Users, questions *services.Questions) *UserHandler {
	return &UserHandler{users: users, questions: questions}
}

// Register creates a new account. The only public write endpoint.
func (h *UserHandler) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		AboutMe  string `json:"about_me" binding:"max=140"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	user, err := h.users.Register(ctx.Request.Context(), req.Username, req.Email, req.Password, req.AboutMe)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			apierror.Abort(ctx, http.StatusBadRequest, "username or email already in use")
			return
		}
		apierror.Abort(ctx, http.StatusInternalServerError, "could not register user")
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// List returns users ordered by username. Supports offset paging and the
// after cursor (a username).
func (h *UserHandler) List(ctx *gin.Context) {
	p, err := pagination.FromQuery(ctx.Request.URL.Query(), pageConfig)
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.users.List(ctx.Request.Context(), p)
	if err != nil {
		apierror.Abort(ctx, http.StatusInternalServerError, "could not list users")
		return
	}

	ctx.JSON(http.StatusOK, pagination.NewPage(users, p, len(users), int(total)))
}

// Get looks a user up by numeric id, falling back to username for
// non-numeric path values.
func (h *UserHandler) Get(ctx *gin.Context) {
	key := ctx.Param("id")

	id, convErr := strconv.Atoi(key)

	var err error
	var user any
	if convErr == nil {
		user, err = h.users.GetByID(ctx.Request.Context(), uint(id))
	} else {
		user, err = h.users.GetByUsername(ctx.Request.Context(), key)
	}
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierror.Abort(ctx, http.StatusNotFound, "user not found")
			return
		}
		apierror.Abort(ctx, http.StatusInternalServerError, "could not load user")
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *UserHandler) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial profile update to the authenticated user.
// Password changes require the current password.
func (h *UserHandler) UpdateMe(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Username    *string `json:"username" binding:"omitempty,min=3,max=64"`
		Email       *string `json:"email" binding:"omitempty,email"`
		AboutMe     *string `json:"about_me" binding:"omitempty,max=140"`
		Password    *string `json:"password" binding:"omitempty,min=6"`
		OldPassword *string `json:"old_password"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), user, services.UserPatch{
		Username:    req.Username,
		Email:       req.Email,
		AboutMe:     req.AboutMe,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			apierror.Abort(ctx, http.StatusBadRequest, "old password is missing or wrong")
		case errors.Is(err, services.ErrUserExists):
			apierror.Abort(ctx, http.StatusBadRequest, "username or email already in use")
		default:
			apierror.Abort(ctx, http.StatusInternalServerError, "could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// Questions returns one author's questions, newest first.
func (h *UserHandler) Questions(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, "invalid user id")
		return
	}

	p, err := pagination.FromQuery(ctx.Request.URL.Query(), pageConfig)
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, err.Error())
		return
	}

	questions, total, err := h.questions.ListByUser(ctx.Request.Context(), uint(id), p)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierror.Abort(ctx, http.StatusNotFound, "user not found")
		case errors.Is(err, pagination.ErrInvalidParam):
			apierror.Abort(ctx, http.StatusBadRequest, err.Error())
		default:
			apierror.Abort(ctx, http.StatusInternalServerError, "could not list questions")
		}
		return
	}

	ctx.JSON(http.StatusOK, pagination.NewPage(questions, p, len(questions), int(total)))
}
