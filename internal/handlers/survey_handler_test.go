package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/events"
	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeActionData(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    services.SubmitAnswerRequest
		wantErr bool
	}{
		{
			name: "object",
			data: `{"instanceid":3,"questionid":4,"responsevalue":"5"}`,
			want: services.SubmitAnswerRequest{InstanceID: 3, QuestionID: 4, ResponseValue: "5"},
		},
		{
			name: "encoded string",
			data: `"{\"instanceid\":3,\"questionid\":4,\"responsevalue\":\"2\"}"`,
			want: services.SubmitAnswerRequest{InstanceID: 3, QuestionID: 4, ResponseValue: "2"},
		},
		{name: "missing", data: ``, wantErr: true},
		{name: "null", data: `null`, wantErr: true},
		{name: "string holding garbage", data: `"not json"`, wantErr: true},
		{name: "wrong type", data: `{"instanceid":"three"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got services.SubmitAnswerRequest
			err := decodeActionData(json.RawMessage(tt.data), &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, errMalformedData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSurveyFlow(t *testing.T) {
	s := newTestServer(t)
	seed := s.seedCourse(t, "s1", "s2")
	query := "?course=7&id=" + itoa(seed.blockID)

	var view services.SurveyView
	s.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/survey"+query, "s1", nil, &view)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, models.StatusNotStarted, view.Completion.Status)

	// The legacy client sends data as a JSON encoded string.
	encoded, err := json.Marshal(gin.H{"instanceid": seed.blockID, "questionid": seed.questions[0], "responsevalue": "4"})
	require.NoError(t, err)
	w := s.do(t, http.MethodPost, "/api/v1/survey-api", "s1", gin.H{"action": "submit_answer", "data": string(encoded)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/survey-api", "s1", gin.H{
		"action": "submit_answer",
		"data":   gin.H{"instanceid": seed.blockID, "questionid": seed.questions[1], "responsevalue": "2"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Body.String())

	var block services.BlockView
	s.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/block"+query, "s1", nil, &block)
	assert.Equal(t, services.BlockViewStudent, block.Role)
	require.NotNil(t, block.Student)
	assert.Equal(t, models.StatusCompleted, block.Student.Status)

	s.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/block"+query, teacherUser, nil, &block)
	assert.Equal(t, services.BlockViewTeacher, block.Role)
	require.NotNil(t, block.Summary)
	assert.Equal(t, 2, block.Summary.Total)
	assert.Equal(t, 1, block.Summary.Completed)

	var report models.CourseCompletion
	s.mustDo(t, http.StatusOK, http.MethodGet, "/api/v1/completions"+query, teacherUser, nil, &report)
	assert.Equal(t, 2, report.QuestionCount)
	assert.Equal(t, 50.0, report.Summary.CompletedPercent)
	require.Len(t, report.Students, 2)

	assert.Len(t, s.publisher.EventsOfType(events.EventSurveyCompleted), 1)
}

func TestSurveyAPIRejections(t *testing.T) {
	s := newTestServer(t)
	seed := s.seedCourse(t, "s1")
	answer := gin.H{"instanceid": seed.blockID, "questionid": seed.questions[0], "responsevalue": "3"}

	tests := []struct {
		name     string
		user     string
		body     interface{}
		status   int
		wantZero bool
	}{
		{name: "unknown action", user: "s1", body: gin.H{"action": "delete_everything", "data": answer}, status: http.StatusOK, wantZero: true},
		{name: "missing action", user: "s1", body: gin.H{"data": answer}, status: http.StatusBadRequest},
		{name: "not json", user: "s1", body: "{", status: http.StatusBadRequest},
		{name: "malformed data", user: "s1", body: gin.H{"action": "submit_answer", "data": "garbage"}, status: http.StatusBadRequest},
		{name: "anonymous", body: gin.H{"action": "submit_answer", "data": answer}, status: http.StatusUnauthorized},
		{name: "outside audience", user: "stranger", body: gin.H{"action": "submit_answer", "data": answer}, status: http.StatusForbidden},
		{
			name:   "question outside block",
			user:   "s1",
			body:   gin.H{"action": "submit_answer", "data": gin.H{"instanceid": seed.blockID, "questionid": 9999, "responsevalue": "3"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown block",
			user:   "s1",
			body:   gin.H{"action": "submit_answer", "data": gin.H{"instanceid": 9999, "questionid": seed.questions[0], "responsevalue": "3"}},
			status: http.StatusNotFound,
		},
		{
			name:   "blank value",
			user:   "s1",
			body:   gin.H{"action": "submit_answer", "data": gin.H{"instanceid": seed.blockID, "questionid": seed.questions[0], "responsevalue": " "}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/survey-api", tt.user, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.wantZero {
				assert.Equal(t, "0", w.Body.String())
			}
		})
	}
}

func TestClosedBlockRejectsAnswers(t *testing.T) {
	s := newTestServer(t)
	seed := s.seedCourse(t, "s1")

	s.mustDo(t, http.StatusOK, http.MethodPut, "/api/v1/courses/7/blocks/"+itoa(seed.blockID)+"/config", teacherUser,
		gin.H{"survey_id": seed.surveyID, "group": "all", "open": false}, nil)

	w := s.do(t, http.MethodGet, "/api/v1/survey?course=7&id="+itoa(seed.blockID), "s1", nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestSurveyQueryValidation(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/v1/survey?id=1",
		"/api/v1/survey?course=7&id=abc",
		"/api/v1/block?course=0&id=1",
		"/api/v1/completions?course=7",
	} {
		w := s.do(t, http.MethodGet, path, "s1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestCompletionAccess(t *testing.T) {
	s := newTestServer(t)
	seed := s.seedCourse(t, "s1")
	query := "?course=7&id=" + itoa(seed.blockID)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/completions"+query, "s1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/completions?course=8&id="+itoa(seed.blockID), teacherUser, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/completions"+query, adminUser, nil).Code)
}

func TestExportCompletions(t *testing.T) {
	s := newTestServer(t)
	seed := s.seedCourse(t, "s1")

	w := s.do(t, http.MethodGet, "/api/v1/completions/export?course=7&id="+itoa(seed.blockID), teacherUser, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Completions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "User s1", rows[1][0])
}
