package services

import (
	"fmt"
	"os"
	"strings"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"
)

// SendFraudAlert emails the configured recipients about a flagged
// submission. Best effort: callers log failures and carry on, an alert
// mail must never fail a validation pass.
func SendFraudAlert(site *models.Site, submission *models.Submission, flags []models.FraudFlag) error {
	recipients := fraudAlertRecipients()
	if len(recipients) == 0 {
		return nil
	}

	var rows strings.Builder
	for _, flag := range flags {
		rows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>", flag.FlagType, flag.Details))
	}

	subject := fmt.Sprintf("[Site Monitor] Fraud flags on site %s (submission #%d)",
		site.SiteCode, submission.SubmissionID)
	html := fmt.Sprintf(`
		<p>Submission <b>#%d</b> for site <b>%s</b> by surveyor #%d was flagged:</p>
		<table border="1" cellpadding="4">
			<tr><th>Flag</th><th>Details</th></tr>
			%s
		</table>
		<p>The surveyor has been asked to recapture the photo.</p>`,
		submission.SubmissionID, site.SiteCode, submission.SurveyorID, rows.String())

	return config.SendMail(recipients, subject, html)
}

func fraudAlertRecipients() []string {
	raw := os.Getenv("FRAUD_ALERT_RECIPIENTS")
	if raw == "" {
		return nil
	}
	var recipients []string
	for _, addr := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
