package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/SAP-F-2025/voice-service/internal/testutil"
	"github.com/SAP-F-2025/voice-service/internal/utils"
	"github.com/SAP-F-2025/voice-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	adminUser   = "admin-1"
	teacherUser = "teacher-1"
)

type testServer struct {
	router    *gin.Engine
	publisher *events.MockEventPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewDiscardLogger()
	slogger := utils.ToSlogLogger(logger)
	publisher := events.NewMockEventPublisher(slogger)
	manager := services.NewServiceManager(postgres.NewRepository(testutil.NewDB(t)), nil, publisher, validator.New(), slogger, services.ManagerConfig{
		Roles: services.RoleConfig{
			StudentRole:    "student",
			AuthoringRoles: []string{"editingteacher", "teacher"},
		},
		OrderPolicy: models.OrderAppend,
	})

	router := gin.New()
	router.Use(utils.RequestID(), utils.ContextLogger(logger), AuthMiddleware(nil, logger))
	NewHandlerManager(manager, logger).SetupRoutes(router)
	return &testServer{router: router, publisher: publisher}
}

// do sends body as JSON on behalf of user. An empty user is anonymous; the
// admin user is sent as a site administrator.
func (s *testServer) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userIDHeader, user)
	}
	if user == adminUser {
		req.Header.Set(siteAdminHeader, "true")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) mustDo(t *testing.T, status int, method, path, user string, body interface{}, out interface{}) {
	t.Helper()

	w := s.do(t, method, path, user, body)
	require.Equal(t, status, w.Code, w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

type idBody struct {
	ID uint `json:"id"`
}

// seeded holds what seedCourse created.
type seeded struct {
	surveyID  uint
	blockID   uint
	questions []uint
}

// seedCourse builds, through the API, a one section survey with two
// questions, enrols the teacher and students in course 7, and configures an
// open block for everyone.
func (s *testServer) seedCourse(t *testing.T, students ...string) *seeded {
	t.Helper()

	var survey, section idBody
	s.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/admin/surveys", adminUser,
		gin.H{"name": "Course feedback", "format": "likert"}, &survey)
	s.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/admin/surveys/"+itoa(survey.ID)+"/sections", adminUser,
		gin.H{"name": "Attitudes"}, &section)

	out := &seeded{surveyID: survey.ID}
	for _, name := range []string{"q1", "q2"} {
		var q idBody
		s.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/admin/sections/"+itoa(section.ID)+"/questions", adminUser,
			gin.H{"name": name, "question_text": "Question " + name}, &q)
		out.questions = append(out.questions, q.ID)
	}

	s.enrol(t, teacherUser, "editingteacher")
	for _, id := range students {
		s.enrol(t, id, "student")
	}

	var block idBody
	s.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/courses/7/blocks", teacherUser, gin.H{"title": "Voice"}, &block)
	out.blockID = block.ID
	s.mustDo(t, http.StatusOK, http.MethodPut, "/api/v1/courses/7/blocks/"+itoa(block.ID)+"/config", teacherUser,
		gin.H{"survey_id": survey.ID, "group": "all"}, nil)
	return out
}

func (s *testServer) enrol(t *testing.T, userID, role string) {
	t.Helper()
	s.mustDo(t, http.StatusOK, http.MethodPut, "/api/v1/admin/users", adminUser,
		gin.H{"id": userID, "full_name": "User " + userID}, nil)
	s.mustDo(t, http.StatusCreated, http.MethodPost, "/api/v1/admin/courses/7/enrolments", adminUser,
		gin.H{"user_id": userID, "role": role}, nil)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
