package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Text(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"Mobile phone number", Phone},
		{"How many years of Python experience do you have?", YearsExperience},
		{"EXPERIENCE (YEARS) with SQL", YearsExperience},
		{"LinkedIn Profile", LinkedInURL},
		{"Personal website", PortfolioURL},
		{"Portfolio link", PortfolioURL},
		{"GitHub URL", GitHubURL},
		{"Describe your experience", Unclassified},
		{"First name", Unclassified},
		{"", Unclassified},
		{"   ", Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(KindText, tt.label))
		})
	}
}

func TestClassify_YearsExperienceIsConjunctive(t *testing.T) {
	labels := []string{
		"Years of experience",
		"experience in years",
		"How many YEARS of trading EXPERIENCE?",
		"Experience: year count",
	}
	for _, l := range labels {
		assert.Equal(t, YearsExperience, Classify(KindText, l), l)
	}

	assert.Equal(t, Unclassified, Classify(KindText, "Relevant experience"))
	assert.Equal(t, Unclassified, Classify(KindText, "Graduation year"))
}

func TestClassify_TextPriority(t *testing.T) {
	// phone outranks years-experience, linkedin outranks portfolio
	assert.Equal(t, Phone, Classify(KindText, "Years of experience answering the phone"))
	assert.Equal(t, LinkedInURL, Classify(KindText, "LinkedIn or personal website"))
	assert.Equal(t, PortfolioURL, Classify(KindText, "Portfolio (GitHub accepted)"))
}

func TestClassify_Dropdown(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"Highest level of education", Education},
		{"Degree", Education},
		{"Are you authorized to work in the US?", WorkAuthorization},
		{"Will you require sponsorship?", WorkAuthorization},
		{"Visa status", VisaStatus},
		{"Gender", Gender},
		{"Race", Ethnicity},
		{"Ethnicity", Ethnicity},
		{"Protected veteran status", VeteranStatus},
		{"Disability status", DisabilityStatus},
		{"Are you disabled?", DisabilityStatus},
		{"Preferred shift", Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(KindDropdown, tt.label))
		})
	}
}

func TestClassify_DropdownPriority(t *testing.T) {
	assert.Equal(t, Education, Classify(KindDropdown, "Degree required for visa"))
	assert.Equal(t, WorkAuthorization, Classify(KindDropdown, "Visa sponsorship"))
	assert.Equal(t, Gender, Classify(KindDropdown, "Gender and ethnicity"))
}

func TestClassify_Radio(t *testing.T) {
	assert.Equal(t, WorkAuthorization, Classify(KindRadio, "Are you legally authorized to work?"))
	assert.Equal(t, Relocation, Classify(KindRadio, "Are you willing to relocate?"))
	assert.Equal(t, RemotePreference, Classify(KindRadio, "Open to remote work?"))
	assert.Equal(t, WorkAuthorization, Classify(KindRadio, "Authorized to work remote?"))
	assert.Equal(t, Unclassified, Classify(KindRadio, "Phone"))
}

func TestClassify_File(t *testing.T) {
	assert.Equal(t, ResumeUpload, Classify(KindFile, "upload-resume-input"))
	assert.Equal(t, ResumeUpload, Classify(KindFile, "Attach CV"))
	assert.Equal(t, CoverLetterUpload, Classify(KindFile, "cover-letter"))
	assert.Equal(t, Unclassified, Classify(KindFile, "transcript"))
}

func TestClassify_UnknownKind(t *testing.T) {
	assert.Equal(t, Unclassified, Classify(Kind("checkbox"), "phone"))
}

func TestRule_Matches(t *testing.T) {
	assert.False(t, Rule{Category: Phone}.Matches("phone"), "empty rule never matches")
	assert.True(t, Rule{AllOf: []string{"a", "b"}}.Matches("b then a"))
	assert.False(t, Rule{AllOf: []string{"a", "z"}}.Matches("b then a"))
	assert.True(t, Rule{AllOf: []string{"year"}, AnyOf: []string{"x", "then"}}.Matches("year then"))
	assert.False(t, Rule{AllOf: []string{"year"}, AnyOf: []string{"x"}}.Matches("year then"))
}
