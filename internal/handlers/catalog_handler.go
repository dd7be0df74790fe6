package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/voice-service/internal/repositories"
	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// CatalogHandler manages the site wide survey bank.
type CatalogHandler struct {
	BaseHandler
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

// ===== SURVEYS =====

// @Router /admin/surveys [get]
func (h *CatalogHandler) ListSurveys(c *gin.Context) {
	var filters repositories.SurveyFilters
	filters.IncludeInactive, _ = strconv.ParseBool(c.Query("include_inactive"))
	filters.VisibleOnly, _ = strconv.ParseBool(c.Query("visible_only"))

	surveys, err := h.catalog.ListSurveys(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

// @Router /admin/surveys/{id} [get]
func (h *CatalogHandler) GetSurvey(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.catalog.GetSurvey(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// @Router /admin/surveys [post]
func (h *CatalogHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	survey, err := h.catalog.CreateSurvey(c.Request.Context(), PrincipalFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Survey created", "survey_id", survey.ID)
	c.JSON(http.StatusCreated, survey)
}

// @Router /admin/surveys/{id} [put]
func (h *CatalogHandler) UpdateSurvey(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	survey, err := h.catalog.UpdateSurvey(c.Request.Context(), PrincipalFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// @Router /admin/surveys/{id} [delete]
func (h *CatalogHandler) DeleteSurvey(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalog.DeleteSurvey(c.Request.Context(), PrincipalFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Survey deleted", nil)
}

// @Router /admin/surveys/{id}/undo-delete [post]
func (h *CatalogHandler) UndoDeleteSurvey(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.catalog.UndoDeleteSurvey(c.Request.Context(), PrincipalFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// ===== SECTIONS =====

// @Router /admin/surveys/{id}/sections [get]
func (h *CatalogHandler) ListSections(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	sections, err := h.catalog.ListSections(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// @Router /admin/surveys/{id}/sections [post]
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	section, err := h.catalog.CreateSection(c.Request.Context(), PrincipalFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// @Router /admin/sections/{id} [put]
func (h *CatalogHandler) RenameSection(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	section, err := h.catalog.RenameSection(c.Request.Context(), PrincipalFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// @Router /admin/sections/{id} [delete]
func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalog.DeleteSection(c.Request.Context(), PrincipalFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Section deleted", nil)
}

// ===== QUESTIONS =====

// @Router /admin/sections/{id}/questions [get]
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	questions, err := h.catalog.ListQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// @Router /admin/sections/{id}/questions [post]
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	question, err := h.catalog.CreateQuestion(c.Request.Context(), PrincipalFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// @Router /admin/questions/{id} [put]
func (h *CatalogHandler) UpdateQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	question, err := h.catalog.UpdateQuestion(c.Request.Context(), PrincipalFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// @Router /admin/questions/{id} [delete]
func (h *CatalogHandler) DeleteQuestion(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalog.DeleteQuestion(c.Request.Context(), PrincipalFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", nil)
}
