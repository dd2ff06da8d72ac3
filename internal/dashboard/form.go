package dashboard

import (
	"strconv"
	"strings"

	"github.com/soyeahso/roster/internal/domain"
)

// Form is the new-agent form as the user typed it.
type Form struct {
	Name              string
	YearsOfExperience string
	Breed             string
	Salary            string
}

// Parse converts the form into an AgentInput and reports every invalid
// field.
func (f Form) Parse() (domain.AgentInput, []domain.FieldError) {
	var fields []domain.FieldError

	in := domain.AgentInput{
		Name:  strings.TrimSpace(f.Name),
		Breed: strings.TrimSpace(f.Breed),
	}

	years, err := strconv.Atoi(strings.TrimSpace(f.YearsOfExperience))
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "years_of_experience", Message: "years of experience must be a whole number"})
	} else {
		in.YearsOfExperience = years
	}

	salary, salaryFields := parseSalary(f.Salary)
	fields = append(fields, salaryFields...)
	in.Salary = salary

	for _, fe := range in.Validate() {
		if !hasField(fields, fe.Field) {
			fields = append(fields, fe)
		}
	}
	return in, fields
}

func parseSalary(text string) (float64, []domain.FieldError) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, []domain.FieldError{{Field: "salary", Message: "salary must be a number"}}
	}
	if fields := (domain.SalaryUpdate{Salary: v}).Validate(); len(fields) > 0 {
		return 0, fields
	}
	return v, nil
}

func hasField(fields []domain.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
