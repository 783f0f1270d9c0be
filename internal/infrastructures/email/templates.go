package email

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

const dateLayout = "2006-01-02"

type TemplateManager struct {
	subjectTmpl *texttemplate.Template
	textTmpl    *texttemplate.Template
	htmlTmpl    *htmltemplate.Template
}

func NewTemplateManager() (*TemplateManager, error) {
	subjectTmpl, err := texttemplate.New("subject").Parse(subjectTemplate)
	if err != nil {
		return nil, err
	}
	textTmpl, err := texttemplate.New("plan.txt").Parse(planTextTemplate)
	if err != nil {
		return nil, err
	}
	htmlTmpl, err := htmltemplate.New("plan.html").Funcs(htmltemplate.FuncMap{
		"paragraphs": paragraphs,
	}).Parse(planHTMLTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		subjectTmpl: subjectTmpl,
		textTmpl:    textTmpl,
		htmlTmpl:    htmlTmpl,
	}, nil
}

type templateData struct {
	Name        string
	SearchID    string
	Date        string
	TripDetails string
	Itinerary   string
}

type RenderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

func (tm *TemplateManager) RenderPlan(email models.PlanEmail) (RenderedEmail, error) {
	data := templateData{
		Name:        email.CustomerName,
		SearchID:    email.SearchID,
		Date:        email.SentAt.Format(dateLayout),
		TripDetails: email.TripDetails,
		Itinerary:   email.Itinerary,
	}

	var subject, text, html bytes.Buffer
	if err := tm.subjectTmpl.Execute(&subject, data); err != nil {
		return RenderedEmail{}, err
	}
	if err := tm.textTmpl.Execute(&text, data); err != nil {
		return RenderedEmail{}, err
	}
	if err := tm.htmlTmpl.Execute(&html, data); err != nil {
		return RenderedEmail{}, err
	}

	return RenderedEmail{
		Subject: strings.TrimSpace(subject.String()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// paragraphs splits text on blank lines for the html body.
func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}

const subjectTemplate = `Your Trip Search Results - ID: {{.SearchID}} - {{.Date}}`

const planTextTemplate = `Dear {{.Name}},

Thank you for using Cocoplanner travel service! Here are the details of your search:

Search ID: {{.SearchID}}

Trip Details:
-------------
{{.TripDetails}}


{{.Itinerary}}

If you have any questions or feedback, please don't hesitate to contact us by replying to this email.

Best regards,
Your Travel Planning Team
`

const planHTMLTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Your Trip Search Results</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<p>Dear {{.Name}},</p>
	<p>Thank you for using Cocoplanner travel service! Here are the details of your search:</p>
	<p><strong>Search ID:</strong> {{.SearchID}}</p>
	<h3>Trip Details</h3>
	<pre style="font-family: inherit;">{{.TripDetails}}</pre>
	<h3>Your Itinerary</h3>
	{{range paragraphs .Itinerary}}<p style="white-space: pre-line;">{{.}}</p>
	{{end}}
	<p>If you have any questions or feedback, please don't hesitate to contact us by replying to this email.</p>
	<p>Best regards,<br>Your Travel Planning Team</p>
</body>
</html>
`
