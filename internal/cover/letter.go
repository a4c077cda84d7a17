// Package cover renders the application cover letter.
package cover

import (
	"fmt"
	"strings"
	"text/template"

	"jobhound/internal/model"
)

const letterText = `Dear Hiring Team,

I'm writing to express my strong interest in the {{.Title}} position{{.CompanyLine}}. With a diverse background spanning banking operations, credit analysis, and hands-on software development, I bring a unique combination of administrative expertise and technical skills.

My experience includes:
- Developing smart IoT systems and CRM applications
- Banking operations and credit analysis
- Full-stack web development
- Technical support and system administration

I'm particularly drawn to roles that combine operational excellence with innovation. I believe my blend of business acumen and technical capabilities would be valuable to your team.

I've attached my CV for your review and would welcome the opportunity to discuss how I can contribute to your organization's success.

Best regards,
{{.Name}}
{{.Email}}{{if .Phone}}
{{.Phone}}{{end}}`

var letterTmpl = template.Must(template.New("letter").Parse(letterText))

// Writer renders personalized cover letters for one applicant.
type Writer struct {
	name  string
	email string
	phone string
}

// NewWriter creates a letter writer with the applicant's signature details.
func NewWriter(name, email, phone string) *Writer {
	return &Writer{name: name, email: email, phone: phone}
}

// Letter renders the cover letter for one listing. An unknown or empty
// company omits the "at X" clause.
func (w *Writer) Letter(title, company string) (string, error) {
	companyLine := ""
	if company != "" && company != model.UnknownCompany {
		companyLine = " at " + company
	}

	var b strings.Builder
	err := letterTmpl.Execute(&b, struct {
		Title       string
		CompanyLine string
		Name        string
		Email       string
		Phone       string
	}{
		Title:       title,
		CompanyLine: companyLine,
		Name:        w.name,
		Email:       w.email,
		Phone:       w.phone,
	})
	if err != nil {
		return "", fmt.Errorf("rendering cover letter: %w", err)
	}
	return b.String(), nil
}
