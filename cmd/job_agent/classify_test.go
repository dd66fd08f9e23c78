package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/profile"
)

func TestParseKind(t *testing.T) {
	for _, k := range []classify.Kind{classify.KindText, classify.KindDropdown, classify.KindRadio, classify.KindFile} {
		got, err := parseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := parseKind("checkbox")
	assert.EqualError(t, err, `unknown control kind "checkbox"`)
}

func TestExplain(t *testing.T) {
	p := &profile.Profile{Phone: "(212) 555-0100"}

	tests := []struct {
		name    string
		kind    classify.Kind
		label   string
		options []string
		want    []string
	}{
		{
			name:  "text field",
			kind:  classify.KindText,
			label: "Mobile phone number",
			want:  []string{"Category: phone", `Action:   set-value("2125550100")`},
		},
		{
			name:    "dropdown shows the chosen option",
			kind:    classify.KindDropdown,
			label:   "Highest level of education",
			options: []string{"High School", "Bachelor's Degree", "Master's Degree"},
			want:    []string{"Category: education", "Action:   select-option(1)", "Option:   Bachelor's Degree"},
		},
		{
			name:  "unclassified",
			kind:  classify.KindText,
			label: "Favourite colour",
			want:  []string{"Category: unclassified", "Action:   skip"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, explain(&buf, p, tt.kind, tt.label, tt.options))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}
