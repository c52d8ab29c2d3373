package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/uniadmit/internal/catalog"
)

func defaultSeed(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(catalog.Defaults(time.Now()))
	require.NoError(t, err)
	return data
}

func TestValidateSeed_Defaults(t *testing.T) {
	assert.NoError(t, ValidateSeed(defaultSeed(t)))
}

func TestValidateSeed_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{
			name:  "missing collections",
			json:  `{"field_configs": []}`,
			field: "(root)",
		},
		{
			name: "unknown question type",
			json: `{"field_configs": [], "document_configs": [], "payment_config": {}, "exam_suites": [],
				"exam_questions": [{"id": "q1", "suite_id": "s", "text": "?", "type": "ranking", "score": 1}]}`,
			field: "exam_questions.0.type",
		},
		{
			name: "slot without capacity",
			json: `{"field_configs": [], "document_configs": [], "payment_config": {}, "exam_suites": [], "exam_questions": [],
				"interview_slots": [{"id": "s1", "start": "2024-01-01T09:00:00Z", "end": "2024-01-01T10:00:00Z", "type": "Onsite", "capacity": 0}]}`,
			field: "interview_slots.0.capacity",
		},
		{
			name: "bad staff role",
			json: `{"field_configs": [], "document_configs": [], "payment_config": {}, "exam_suites": [], "exam_questions": [],
				"staff_users": [{"id": "u", "username": "u", "role": "JANITOR"}]}`,
			field: "staff_users.0.role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeed([]byte(tt.json))
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateSeed_Malformed(t *testing.T) {
	err := ValidateSeed([]byte("{ invalid json }"))
	require.Error(t, err)
	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "error should be SchemaLoadError, got %T", err)
}

func TestValidateSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, defaultSeed(t), 0o644))
	assert.NoError(t, ValidateSeedFile(path))

	err := ValidateSeedFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))

	err := ValidateJSONString(schemaContent, `{"age": 1}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, validationErr.Errors, 1)
	assert.Contains(t, validationErr.Error(), "validation failed")
}
