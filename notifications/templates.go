package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type approvalView struct {
	Supplier     string
	ApproverName string
	Step         string
	Department   string
	AcceptURL    string
	RejectURL    string
}

const approvalText = `Hello {{.ApproverName}},

Supplier {{.Supplier}} is waiting for your decision on step "{{.Step}}" ({{.Department}}).

Approve: {{.AcceptURL}}
Reject:  {{.RejectURL}}
`

const approvalHTML = `<p>Hello {{.ApproverName}},</p>
<p>Supplier <strong>{{.Supplier}}</strong> is waiting for your decision on step
<strong>{{.Step}}</strong> ({{.Department}}).</p>
<p><a href="{{.AcceptURL}}">Approve</a> | <a href="{{.RejectURL}}">Reject</a></p>
`

var (
	approvalTextTmpl = texttemplate.Must(texttemplate.New("approval_text").Parse(approvalText))
	approvalHTMLTmpl = htmltemplate.Must(htmltemplate.New("approval_html").Parse(approvalHTML))
)

func renderApproval(v approvalView) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := approvalTextTmpl.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("render approval text: %w", err)
	}
	if err := approvalHTMLTmpl.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("render approval html: %w", err)
	}
	return tb.String(), hb.String(), nil
}
