package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// BlockHandler manages survey blocks placed in a course.
type BlockHandler struct {
	BaseHandler
	blocks services.BlockService
}

func NewBlockHandler(blocks services.BlockService, logger utils.Logger) *BlockHandler {
	return &BlockHandler{
		BaseHandler: NewBaseHandler(logger),
		blocks:      blocks,
	}
}

// @Router /courses/{course_id}/blocks [get]
func (h *BlockHandler) ListBlocks(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	blocks, err := h.blocks.ListBlocks(c.Request.Context(), PrincipalFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// @Router /courses/{course_id}/blocks [post]
func (h *BlockHandler) CreateBlock(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	var req services.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	block, err := h.blocks.CreateBlock(c.Request.Context(), PrincipalFromContext(c), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Block created", "block_instance_id", block.ID)
	c.JSON(http.StatusCreated, block)
}

// @Router /courses/{course_id}/blocks/{id}/config [get]
func (h *BlockHandler) GetConfiguration(c *gin.Context) {
	courseID, instanceID, ok := h.blockParams(c)
	if !ok {
		return
	}

	config, err := h.blocks.GetConfiguration(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

// @Router /courses/{course_id}/blocks/{id}/config [put]
func (h *BlockHandler) SaveConfiguration(c *gin.Context) {
	courseID, instanceID, ok := h.blockParams(c)
	if !ok {
		return
	}

	var req services.SaveBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	block, err := h.blocks.SaveConfiguration(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

// @Router /courses/{course_id}/blocks/{id} [delete]
func (h *BlockHandler) DeleteBlock(c *gin.Context) {
	courseID, instanceID, ok := h.blockParams(c)
	if !ok {
		return
	}

	if err := h.blocks.DeleteBlock(c.Request.Context(), PrincipalFromContext(c), courseID, instanceID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Block deleted", nil)
}

// @Router /courses/{course_id}/audience-options [get]
func (h *BlockHandler) AudienceOptions(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	options, err := h.blocks.AudienceOptions(c.Request.Context(), PrincipalFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (h *BlockHandler) blockParams(c *gin.Context) (uint, uint, bool) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return 0, 0, false
	}
	instanceID := ParseUintParam(c, "id")
	if instanceID == 0 {
		return 0, 0, false
	}
	return courseID, instanceID, true
}
