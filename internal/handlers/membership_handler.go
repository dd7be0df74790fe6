package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// MembershipHandler maintains users, enrolments and course groups.
type MembershipHandler struct {
	BaseHandler
	membership services.MembershipService
}

func NewMembershipHandler(membership services.MembershipService, logger utils.Logger) *MembershipHandler {
	return &MembershipHandler{
		BaseHandler: NewBaseHandler(logger),
		membership:  membership,
	}
}

// @Router /admin/users [put]
func (h *MembershipHandler) UpsertUser(c *gin.Context) {
	var req services.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	user, err := h.membership.UpsertUser(c.Request.Context(), PrincipalFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Router /admin/courses/{course_id}/enrolments [post]
func (h *MembershipHandler) Enrol(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	var req services.EnrolmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	enrolment, err := h.membership.Enrol(c.Request.Context(), PrincipalFromContext(c), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrolment)
}

// @Router /admin/courses/{course_id}/enrolments/{user_id} [delete]
func (h *MembershipHandler) Unenrol(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	err := h.membership.Unenrol(c.Request.Context(), PrincipalFromContext(c), courseID, userID, c.Query("role"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Enrolment removed", nil)
}

// @Router /admin/courses/{course_id}/groups [get]
func (h *MembershipHandler) ListGroups(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	groups, err := h.membership.ListGroups(c.Request.Context(), PrincipalFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// @Router /admin/courses/{course_id}/groups [post]
func (h *MembershipHandler) CreateGroup(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	var req services.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	group, err := h.membership.CreateGroup(c.Request.Context(), PrincipalFromContext(c), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// @Router /admin/groups/{id}/members/{user_id} [put]
func (h *MembershipHandler) AddGroupMember(c *gin.Context) {
	groupID := ParseUintParam(c, "id")
	if groupID == 0 {
		return
	}
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	if err := h.membership.AddGroupMember(c.Request.Context(), PrincipalFromContext(c), groupID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Member added", nil)
}

// @Router /admin/courses/{course_id}/groupings [get]
func (h *MembershipHandler) ListGroupings(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	groupings, err := h.membership.ListGroupings(c.Request.Context(), PrincipalFromContext(c), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, groupings)
}

// @Router /admin/courses/{course_id}/groupings [post]
func (h *MembershipHandler) CreateGrouping(c *gin.Context) {
	courseID := ParseUintParam(c, "course_id")
	if courseID == 0 {
		return
	}

	var req services.GroupingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	grouping, err := h.membership.CreateGrouping(c.Request.Context(), PrincipalFromContext(c), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grouping)
}
