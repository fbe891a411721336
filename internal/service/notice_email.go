package service

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/docnotify/docnotify-api/internal/models"
)

const noticeHTMLTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Document Expiration Notice</h2>
  <p>Hello{{if .Name}} {{.Name}}{{end}},</p>
  <p>The following {{if .Plural}}documents require{{else}}document requires{{end}} your attention:</p>
  <table style="border-collapse: collapse; width: 100%;">
    <tr style="background-color: #f5f5f5;">
      <th style="border: 1px solid #ddd; padding: 8px; text-align: left;">Document</th>
      <th style="border: 1px solid #ddd; padding: 8px; text-align: left;">Expiry Date</th>
      <th style="border: 1px solid #ddd; padding: 8px; text-align: left;">Status</th>
    </tr>
    {{range .Rows}}<tr>
      <td style="border: 1px solid #ddd; padding: 8px;">{{.Title}}</td>
      <td style="border: 1px solid #ddd; padding: 8px;">{{.ExpiryDate}}</td>
      <td style="border: 1px solid #ddd; padding: 8px; color: {{.StatusColor}}; font-weight: bold;">{{.Status}}</td>
    </tr>{{end}}
  </table>
  <p><a href="{{.DashboardURL}}">Open your dashboard</a> to review and update your documents.</p>
</body>
</html>`

type noticeRow struct {
	Title       string
	ExpiryDate  string
	Status      string
	StatusColor template.CSS
}

type noticeTemplateData struct {
	Name         string
	Plural       bool
	Rows         []noticeRow
	DashboardURL string
}

// NoticeEmailBuilder renders the consolidated expiration email, one message
// per user covering every flagged document.
type NoticeEmailBuilder struct {
	dashboardURL string
	tmpl         *template.Template
}

// NewNoticeEmailBuilder prepares the builder and parses the HTML template.
func NewNoticeEmailBuilder(dashboardURL string) *NoticeEmailBuilder {
	return &NoticeEmailBuilder{
		dashboardURL: dashboardURL,
		tmpl:         template.Must(template.New("notice").Parse(noticeHTMLTemplate)),
	}
}

// Subject returns the email subject for a notice covering n documents.
func (b *NoticeEmailBuilder) Subject(n int) string {
	if n == 1 {
		return "Document Expiration Notice - 1 document"
	}
	return fmt.Sprintf("Document Expiration Notice - %d documents", n)
}

// Build renders the subject, plain text body, and HTML body for one user's
// notices. Expired documents sort first, then by soonest expiry.
func (b *NoticeEmailBuilder) Build(userName string, notices []models.DocumentNotice) (subject, text, htmlBody string, err error) {
	if len(notices) == 0 {
		return "", "", "", fmt.Errorf("no notices to render")
	}

	sorted := make([]models.DocumentNotice, len(notices))
	copy(sorted, notices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsExpired != sorted[j].IsExpired {
			return sorted[i].IsExpired
		}
		return sorted[i].ExpiryDate.Before(sorted[j].ExpiryDate)
	})

	data := noticeTemplateData{
		Name:         userName,
		Plural:       len(sorted) > 1,
		DashboardURL: b.dashboardURL,
	}

	var textBuf strings.Builder
	fmt.Fprintf(&textBuf, "Hello %s,\n\n", strings.TrimSpace(userName))
	if len(sorted) == 1 {
		textBuf.WriteString("The following document requires your attention:\n\n")
	} else {
		textBuf.WriteString("The following documents require your attention:\n\n")
	}

	for _, notice := range sorted {
		status := statusLabel(notice)
		color := template.CSS("#ffc107")
		if notice.IsExpired {
			color = template.CSS("#dc3545")
		}
		expiry := notice.ExpiryDate.Format("Jan 2, 2006")

		data.Rows = append(data.Rows, noticeRow{
			Title:       notice.Title,
			ExpiryDate:  expiry,
			Status:      status,
			StatusColor: color,
		})
		fmt.Fprintf(&textBuf, "- %s (expires %s): %s\n", notice.Title, expiry, status)
	}

	fmt.Fprintf(&textBuf, "\nOpen your dashboard to review and update your documents: %s\n", b.dashboardURL)

	var htmlBuf bytes.Buffer
	if err := b.tmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", "", fmt.Errorf("render notice email: %w", err)
	}

	return b.Subject(len(sorted)), textBuf.String(), htmlBuf.String(), nil
}

func statusLabel(notice models.DocumentNotice) string {
	if notice.IsExpired {
		return "Expired"
	}
	if notice.DaysUntilExpiry == 1 {
		return "Expires in 1 day"
	}
	return fmt.Sprintf("Expires in %d days", notice.DaysUntilExpiry)
}
