package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	surveyHandler     *SurveyHandler
	completionHandler *CompletionHandler
	catalogHandler    *CatalogHandler
	blockHandler      *BlockHandler
	membershipHandler *MembershipHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		surveyHandler:     NewSurveyHandler(serviceManager.Submission(), logger),
		completionHandler: NewCompletionHandler(serviceManager.Completion(), serviceManager.Report(), logger),
		catalogHandler:    NewCatalogHandler(serviceManager.Catalog(), logger),
		blockHandler:      NewBlockHandler(serviceManager.Block(), logger),
		membershipHandler: NewMembershipHandler(serviceManager.Membership(), logger),
	}
}

// SetupRoutes sets up all API routes. The auth middleware must already be
// installed on the engine.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", RequireAuth())
	{
		// Respondent routes
		v1.POST("/survey-api", hm.surveyHandler.Dispatch)
		v1.GET("/survey", hm.surveyHandler.GetSurvey)
		v1.GET("/block", hm.surveyHandler.GetBlock)

		// Staff completion routes
		v1.GET("/completions", hm.completionHandler.GetCompletions)
		v1.GET("/completions/export", hm.completionHandler.ExportCompletions)

		// Block routes
		courses := v1.Group("/courses/:course_id")
		{
			courses.GET("/blocks", hm.blockHandler.ListBlocks)
			courses.POST("/blocks", hm.blockHandler.CreateBlock)
			courses.GET("/blocks/:id/config", hm.blockHandler.GetConfiguration)
			courses.PUT("/blocks/:id/config", hm.blockHandler.SaveConfiguration)
			courses.DELETE("/blocks/:id", hm.blockHandler.DeleteBlock)
			courses.GET("/audience-options", hm.blockHandler.AudienceOptions)
		}

		// Survey bank reads are open to any authenticated caller
		v1.GET("/surveys", hm.catalogHandler.ListSurveys)
		v1.GET("/surveys/:id", hm.catalogHandler.GetSurvey)

		admin := v1.Group("/admin", AdminMiddleware())
		{
			admin.GET("/surveys", hm.catalogHandler.ListSurveys)
			admin.POST("/surveys", hm.catalogHandler.CreateSurvey)
			admin.GET("/surveys/:id", hm.catalogHandler.GetSurvey)
			admin.PUT("/surveys/:id", hm.catalogHandler.UpdateSurvey)
			admin.DELETE("/surveys/:id", hm.catalogHandler.DeleteSurvey)
			admin.POST("/surveys/:id/undo-delete", hm.catalogHandler.UndoDeleteSurvey)
			admin.GET("/surveys/:id/sections", hm.catalogHandler.ListSections)
			admin.POST("/surveys/:id/sections", hm.catalogHandler.CreateSection)
			admin.PUT("/sections/:id", hm.catalogHandler.RenameSection)
			admin.DELETE("/sections/:id", hm.catalogHandler.DeleteSection)
			admin.GET("/sections/:id/questions", hm.catalogHandler.ListQuestions)
			admin.POST("/sections/:id/questions", hm.catalogHandler.CreateQuestion)
			admin.PUT("/questions/:id", hm.catalogHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", hm.catalogHandler.DeleteQuestion)

			// Membership management
			admin.PUT("/users", hm.membershipHandler.UpsertUser)
			admin.POST("/courses/:course_id/enrolments", hm.membershipHandler.Enrol)
			admin.DELETE("/courses/:course_id/enrolments/:user_id", hm.membershipHandler.Unenrol)
			admin.GET("/courses/:course_id/groups", hm.membershipHandler.ListGroups)
			admin.POST("/courses/:course_id/groups", hm.membershipHandler.CreateGroup)
			admin.PUT("/groups/:id/members/:user_id", hm.membershipHandler.AddGroupMember)
			admin.GET("/courses/:course_id/groupings", hm.membershipHandler.ListGroupings)
			admin.POST("/courses/:course_id/groupings", hm.membershipHandler.CreateGrouping)
		}
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voice-service",
	})
}
