package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  AgentInput
		fields []string
	}{
		{
			name:  "valid",
			input: AgentInput{Name: "Tom", YearsOfExperience: 3, Breed: "Sphynx", Salary: 1000},
		},
		{
			name:  "zero salary and experience allowed",
			input: AgentInput{Name: "Tom", Breed: "Sphynx"},
		},
		{
			name:   "missing name",
			input:  AgentInput{Name: "  ", YearsOfExperience: 1, Breed: "Sphynx", Salary: 1},
			fields: []string{"name"},
		},
		{
			name:   "negative experience",
			input:  AgentInput{Name: "Tom", YearsOfExperience: -1, Breed: "Sphynx", Salary: 1},
			fields: []string{"years_of_experience"},
		},
		{
			name:   "everything wrong",
			input:  AgentInput{YearsOfExperience: -2, Salary: -5},
			fields: []string{"name", "years_of_experience", "breed", "salary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.input.Validate()
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestSalaryUpdateValidate(t *testing.T) {
	assert.Empty(t, SalaryUpdate{Salary: 1500.50}.Validate())
	assert.Empty(t, SalaryUpdate{Salary: 0}.Validate())
	assert.Len(t, SalaryUpdate{Salary: -0.01}.Validate(), 1)
	assert.Len(t, SalaryUpdate{Salary: math.NaN()}.Validate(), 1)
}

func TestAgentInputWithID(t *testing.T) {
	in := AgentInput{Name: "Tom", YearsOfExperience: 3, Breed: "Sphynx", Salary: 1000}
	a := in.WithID(7)
	assert.Equal(t, Agent{ID: 7, Name: "Tom", YearsOfExperience: 3, Breed: "Sphynx", Salary: 1000}, a)
}

func TestAgentJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Agent{ID: 1, Name: "Tom", YearsOfExperience: 3, Breed: "Sphynx", Salary: 1500.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Tom","years_of_experience":3,"breed":"Sphynx","salary":1500.5}`, string(data))
}

func TestJoinFieldErrors(t *testing.T) {
	msg := JoinFieldErrors([]FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "breed", Message: "breed is required"},
	})
	assert.Equal(t, "name is required; breed is required", msg)
}

func TestMissionActive(t *testing.T) {
	id := int64(4)
	assert.False(t, Mission{}.Active())
	assert.True(t, Mission{AgentID: &id}.Active())
	assert.False(t, Mission{AgentID: &id, IsCompleted: true}.Active())
}

func TestMissionInputValidate(t *testing.T) {
	in := MissionInput{Targets: []TargetInput{{Name: "Rex", Country: "UK"}, {Name: "", Country: ""}}}
	errs := in.Validate()
	require.Len(t, errs, 2)
	assert.Equal(t, "targets.name", errs[0].Field)
	assert.Equal(t, "targets.country", errs[1].Field)
}
