package domain

// The survey is a fixed instrument: 15 Likert questions on a 1-10 scale,
// grouped into 5 categories of 3 questions each, plus a department selection.
// Other tools read the backing sheet, so ids and column order are contractual.

const (
	// ScaleMin and ScaleMax bound every answer value.
	ScaleMin = 1
	ScaleMax = 10

	// DepartmentPlaceholder is the unset value the form's select box carries
	// before the respondent picks a department.
	DepartmentPlaceholder = "Select department..."

	// AllDepartments is the filter sentinel meaning "do not filter".
	AllDepartments = "All"

	// OverallIndexName labels the derived per-response index in exports.
	OverallIndexName = "Overall Index"
)

// QuestionIDs lists the question columns in their persisted order.
var QuestionIDs = []string{
	"q1", "q2", "q3", "q4", "q5",
	"q6", "q7", "q8", "q9", "q10",
	"q11", "q12", "q13", "q14", "q15",
}

var questionStems = map[string]string{
	"q1":  "I am satisfied with my current workload.",
	"q2":  "After a workday, I have enough mental energy for the rest of my day.",
	"q3":  "I am able to disconnect from work outside working hours.",
	"q4":  "I feel comfortable sharing my opinions within my team.",
	"q5":  "My direct manager supports my wellbeing.",
	"q6":  "There is effective collaboration within my department.",
	"q7":  "I feel motivated in my daily work.",
	"q8":  "My work has a positive impact on my mental wellbeing.",
	"q9":  "I feel physically well during working hours.",
	"q10": "I can maintain a healthy balance between work and personal life.",
	"q11": "My working schedule is flexible enough for my personal needs.",
	"q12": "I am satisfied with the remote or hybrid work options available to me.",
	"q13": "I see clear opportunities for professional growth at MSC Latvia.",
	"q14": "I feel valued and recognized for my contributions.",
	"q15": "Overall, I am satisfied working at MSC Latvia.",
}

// Departments is the fixed set of organizational units, in display order.
var Departments = []string{
	"Administration",
	"Customer Invoicing",
	"Finance & Accounting",
	"Commercial Reporting & BI",
	"Information Technology",
	"OVA",
	"Documentation, Pricing & Legal",
}

// Category groups exactly three related questions into a sub-score.
type Category struct {
	Name      string
	Questions []string
}

// Categories covers all 15 questions with no overlap.
var Categories = []Category{
	{Name: "Workload & Recovery", Questions: []string{"q1", "q2", "q3"}},
	{Name: "Team & Leadership", Questions: []string{"q4", "q5", "q6"}},
	{Name: "Motivation & Wellbeing", Questions: []string{"q7", "q8", "q9"}},
	{Name: "Work-Life Balance", Questions: []string{"q10", "q11", "q12"}},
	{Name: "Growth & Recognition", Questions: []string{"q13", "q14", "q15"}},
}

// IsValidDepartment reports whether d is a member of the configured set.
func IsValidDepartment(d string) bool {
	for _, dept := range Departments {
		if dept == d {
			return true
		}
	}
	return false
}

// IsQuestionID reports whether id names one of the 15 survey questions.
func IsQuestionID(id string) bool {
	_, ok := questionStems[id]
	return ok
}

// QuestionStem returns the full question text for a question id, or "".
func QuestionStem(id string) string {
	return questionStems[id]
}

// CategoryByName returns the category configuration for a name.
func CategoryByName(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
