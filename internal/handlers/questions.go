package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/apierror"
	"github.com/WadsonGarbes/formaplus-api/internal/middleware"
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questions *services.Questions
}

func NewQuestionHandler(questions *services.Questions) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// Create stores a new question authored by the authenticated user.
func (h *QuestionHandler) Create(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Body      string     `json:"body" binding:"required,max=1024"`
		Answer    string     `json:"answer" binding:"max=512"`
		Timestamp *time.Time `json:"timestamp"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	question, err := h.questions.Create(ctx.Request.Context(), user, req.Body, req.Answer, req.Timestamp)
	if err != nil {
		apierror.Abort(ctx, http.StatusInternalServerError, "could not create question")
		return
	}

	ctx.JSON(http.StatusCreated, question)
}

// List returns questions newest first. Supports offset paging and the after
// cursor (an RFC 3339 timestamp).
func (h *QuestionHandler) List(ctx *gin.Context) {
	p, err := pagination.FromQuery(ctx.Request.URL.Query(), pageConfig)
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, err.Error())
		return
	}

	questions, total, err := h.questions.List(ctx.Request.Context(), p)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidParam) {
			apierror.Abort(ctx, http.StatusBadRequest, err.Error())
			return
		}
		apierror.Abort(ctx, http.StatusInternalServerError, "could not list questions")
		return
	}

	ctx.JSON(http.StatusOK, pagination.NewPage(questions, p, len(questions), int(total)))
}

func (h *QuestionHandler) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, "invalid question id")
		return
	}

	question, err := h.questions.Get(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			apierror.Abort(ctx, http.StatusNotFound, "question not found")
			return
		}
		apierror.Abort(ctx, http.StatusInternalServerError, "could not load question")
		return
	}

	ctx.JSON(http.StatusOK, question)
}

// Update edits a question. Only its author may do so.
func (h *QuestionHandler) Update(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, "invalid question id")
		return
	}

	var req struct {
		Body   *string `json:"body" binding:"omitempty,max=1024"`
		Answer *string `json:"answer" binding:"omitempty,max=512"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		apierror.AbortValidation(ctx, err)
		return
	}

	question, err := h.questions.Update(ctx.Request.Context(), user, uint(id), services.QuestionPatch{
		Body:   req.Body,
		Answer: req.Answer,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionNotFound):
			apierror.Abort(ctx, http.StatusNotFound, "question not found")
		case errors.Is(err, services.ErrAccessDenied):
			apierror.Abort(ctx, http.StatusForbidden, "only the author may edit this question")
		default:
			apierror.Abort(ctx, http.StatusInternalServerError, "could not update question")
		}
		return
	}

	ctx.JSON(http.StatusOK, question)
}

// Delete removes a question. Only its author may do so.
func (h *QuestionHandler) Delete(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		apierror.Abort(ctx, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		apierror.Abort(ctx, http.StatusBadRequest, "invalid question id")
		return
	}

	if err := h.questions.Delete(ctx.Request.Context(), user, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionNotFound):
			apierror.Abort(ctx, http.StatusNotFound, "question not found")
		case errors.Is(err, services.ErrAccessDenied):
			apierror.Abort(ctx, http.StatusForbidden, "only the author may delete this question")
		default:
			apierror.Abort(ctx, http.StatusInternalServerError, "could not delete question")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
