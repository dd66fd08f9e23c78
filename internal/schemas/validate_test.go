package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["phone"],
	"properties": {
		"phone": {"type": "string"},
		"python_years": {"type": "integer", "minimum": 0},
		"auto_submit": {"type": "boolean"}
	}
}`

func TestSchemaValidate(t *testing.T) {
	s, err := Compile("profile", testSchema)
	require.NoError(t, err)

	tests := []struct {
		name   string
		doc    string
		fields []string
	}{
		{"valid", `{"phone": "212-555-0100", "python_years": 4}`, nil},
		{"wrong types sorted by field", `{"phone": "1", "python_years": "four", "auto_submit": "yes"}`, []string{"auto_submit", "python_years"}},
		{"below minimum", `{"phone": "1", "python_years": -1}`, []string{"python_years"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate([]byte(tt.doc))
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields())
			assert.Equal(t, "profile", ve.Schema)
		})
	}
}

func TestSchemaValidate_ErrorMessage(t *testing.T) {
	err := MustCompile("profile", testSchema).Validate([]byte(`{"phone": 5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile: 1 schema violation(s): phone:")
}

func TestSchemaValidate_NotJSON(t *testing.T) {
	err := MustCompile("profile", testSchema).Validate([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is not valid JSON")

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestSchemaValidate_MissingRequired(t *testing.T) {
	err := MustCompile("profile", testSchema).Validate([]byte(`{"python_years": 4}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
	assert.Contains(t, ve.Errors[0].Message, "phone")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broken", ce.Schema)

	assert.Panics(t, func() { MustCompile("broken", `{"type": 12}`) })
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(testSchema, `{"phone": "1"}`))
	assert.Error(t, ValidateJSONString(testSchema, `{}`))
}
