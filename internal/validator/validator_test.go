package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/SAP-F-2025/voice-service/internal/config"
	apperrors "github.com/SAP-F-2025/voice-service/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockRequest struct {
	Format   string `json:"format" validate:"required,survey_format"`
	Audience string `json:"group" validate:"audience_selector"`
	Policy   string `json:"policy" validate:"omitempty,order_policy"`
	Value    string `json:"responsevalue" validate:"response_value"`
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()

	valid := blockRequest{Format: "likert", Audience: "grouping-4", Policy: "drop", Value: "3"}
	assert.NoError(t, v.Validate(valid))

	emptyAudience := valid
	emptyAudience.Audience = ""
	assert.NoError(t, v.Validate(emptyAudience))

	tests := []struct {
		name  string
		mut   func(r *blockRequest)
		field string
		rule  string
	}{
		{"unknown format", func(r *blockRequest) { r.Format = "stars" }, "format", "survey_format"},
		{"malformed audience", func(r *blockRequest) { r.Audience = "group-abc" }, "group", "audience_selector"},
		{"zero group", func(r *blockRequest) { r.Audience = "group-0" }, "group", "audience_selector"},
		{"unknown policy", func(r *blockRequest) { r.Policy = "shuffle" }, "policy", "order_policy"},
		{"blank answer", func(r *blockRequest) { r.Value = "  " }, "responsevalue", "response_value"},
		{"long answer", func(r *blockRequest) { r.Value = strings.Repeat("x", 256) }, "responsevalue", "response_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var errs apperrors.ValidationErrors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.rule, errs[0].Rule)
		})
	}
}

func TestValidate_VoiceConfig(t *testing.T) {
	v := New()

	valid := config.VoiceConfig{
		StudentRole:    "student",
		AuthoringRoles: []string{"editingteacher"},
		OrderPolicy:    "append",
	}
	assert.NoError(t, v.Validate(valid))

	tests := []struct {
		name  string
		mut   func(c *config.VoiceConfig)
		field string
		rule  string
	}{
		{"unknown policy", func(c *config.VoiceConfig) { c.OrderPolicy = "shuffle" }, "VOICE_ORDER_POLICY", "order_policy"},
		{"missing policy", func(c *config.VoiceConfig) { c.OrderPolicy = "" }, "VOICE_ORDER_POLICY", "required"},
		{"no authoring roles", func(c *config.VoiceConfig) { c.AuthoringRoles = nil }, "VOICE_AUTHORING_ROLES", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mut(&cfg)

			var errs apperrors.ValidationErrors
			require.True(t, errors.As(v.Validate(cfg), &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.rule, errs[0].Rule)
		})
	}
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("append", "order_policy"))
	assert.Error(t, v.Var("random", "order_policy"))
}
