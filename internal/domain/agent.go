package domain

import (
	"fmt"
	"math"
	"strings"
)

// Agent is a roster record as persisted by the record store.
type Agent struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	YearsOfExperience int     `json:"years_of_experience"`
	Breed             string  `json:"breed"`
	Salary            float64 `json:"salary"`
}

// AgentInput is the body of a create request: an Agent minus its id.
type AgentInput struct {
	Name              string  `json:"name"`
	YearsOfExperience int     `json:"years_of_experience"`
	Breed             string  `json:"breed"`
	Salary            float64 `json:"salary"`
}

// SalaryUpdate is the partial update accepted on an agent item.
type SalaryUpdate struct {
	Salary float64 `json:"salary"`
}

// FieldError describes one invalid field of an input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the input and returns one FieldError per problem, or nil.
func (in AgentInput) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if in.YearsOfExperience < 0 {
		errs = append(errs, FieldError{Field: "years_of_experience", Message: "must be a non-negative integer"})
	}
	if strings.TrimSpace(in.Breed) == "" {
		errs = append(errs, FieldError{Field: "breed", Message: "breed is required"})
	}
	errs = append(errs, validateSalary(in.Salary)...)
	return errs
}

// Validate checks the salary value.
func (u SalaryUpdate) Validate() []FieldError {
	return validateSalary(u.Salary)
}

// WithID returns the Agent this input becomes once the store assigns id.
func (in AgentInput) WithID(id int64) Agent {
	return Agent{
		ID:                id,
		Name:              in.Name,
		YearsOfExperience: in.YearsOfExperience,
		Breed:             in.Breed,
		Salary:            in.Salary,
	}
}

func validateSalary(v float64) []FieldError {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return []FieldError{{Field: "salary", Message: "must be a non-negative number"}}
	}
	return nil
}

// JoinFieldErrors renders field errors as a single "; "-separated message.
func JoinFieldErrors(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Message
	}
	return strings.Join(parts, "; ")
}
