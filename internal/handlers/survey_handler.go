package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ActionRequest is the envelope of the RPC style survey endpoint. Data may
// be a JSON object or a string holding JSON.
type ActionRequest struct {
	Action string          `json:"action" binding:"required"`
	Data   json.RawMessage `json:"data"`
}

// errMalformedData marks an action payload that could not be decoded.
var errMalformedData = errors.New("malformed action data")

type actionFunc func(c *gin.Context, principal services.Principal, data json.RawMessage) (bool, error)

// SurveyHandler serves the respondent facing endpoints.
type SurveyHandler struct {
	BaseHandler
	submission services.SubmissionService
	actions    map[string]actionFunc
}

func NewSurveyHandler(submission services.SubmissionService, logger utils.Logger) *SurveyHandler {
	h := &SurveyHandler{
		BaseHandler: NewBaseHandler(logger),
		submission:  submission,
	}
	h.actions = map[string]actionFunc{
		"submit_answer": h.submitAnswer,
	}
	return h
}

// Dispatch runs a named action and answers 1 on success and 0 when the
// action is unknown.
// @Router /survey-api [post]
func (h *SurveyHandler) Dispatch(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	action, ok := h.actions[req.Action]
	if !ok {
		h.LogWarn(c, "Unknown survey action", "action", req.Action)
		c.JSON(http.StatusOK, 0)
		return
	}

	done, err := action(c, PrincipalFromContext(c), req.Data)
	if err != nil {
		if errors.Is(err, errMalformedData) {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid action data", err, err.Error())
			return
		}
		h.handleServiceError(c, err)
		return
	}
	if done {
		c.JSON(http.StatusOK, 1)
		return
	}
	c.JSON(http.StatusOK, 0)
}

func (h *SurveyHandler) submitAnswer(c *gin.Context, principal services.Principal, data json.RawMessage) (bool, error) {
	var req services.SubmitAnswerRequest
	if err := decodeActionData(data, &req); err != nil {
		return false, err
	}
	return h.submission.SubmitAnswer(c.Request.Context(), principal, &req)
}

func decodeActionData(data json.RawMessage, v interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errMalformedData
	}
	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return errors.Join(errMalformedData, err)
		}
		data = []byte(encoded)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(errMalformedData, err)
	}
	return nil
}

// GetSurvey renders the survey for the caller.
// @Router /survey [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	courseID := ParseUintQuery(c, "course")
	if courseID == 0 {
		return
	}
	instanceID := ParseUintQuery(c, "id")
	if instanceID == 0 {
		return
	}

	view, err := h.submission.StartSurvey(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetBlock returns the block content for the caller.
// @Router /block [get]
func (h *SurveyHandler) GetBlock(c *gin.Context) {
	courseID := ParseUintQuery(c, "course")
	if courseID == 0 {
		return
	}
	instanceID := ParseUintQuery(c, "id")
	if instanceID == 0 {
		return
	}

	view, err := h.submission.BlockView(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CompletionHandler serves the staff completion views.
type CompletionHandler struct {
	BaseHandler
	completion services.CompletionService
	report     services.ReportService
}

func NewCompletionHandler(completion services.CompletionService, report services.ReportService, logger utils.Logger) *CompletionHandler {
	return &CompletionHandler{
		BaseHandler: NewBaseHandler(logger),
		completion:  completion,
		report:      report,
	}
}

// @Router /completions [get]
func (h *CompletionHandler) GetCompletions(c *gin.Context) {
	courseID := ParseUintQuery(c, "course")
	if courseID == 0 {
		return
	}
	instanceID := ParseUintQuery(c, "id")
	if instanceID == 0 {
		return
	}

	report, err := h.completion.CourseCompletion(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Router /completions/export [get]
func (h *CompletionHandler) ExportCompletions(c *gin.Context) {
	courseID := ParseUintQuery(c, "course")
	if courseID == 0 {
		return
	}
	instanceID := ParseUintQuery(c, "id")
	if instanceID == 0 {
		return
	}

	export, err := h.report.ExportCompletions(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
