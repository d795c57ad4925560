package utils

import (
	"fmt"
	"strings"

	"poultry-app/config"
	"poultry-app/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// SendVarianceAlert mails a summary of non-zero stock variances raised by a
// settlement submission. Mail is best-effort: when SMTP is not configured the
// alert is skipped, and delivery failures are logged but never fail the
// submission.
func SendVarianceAlert(settlement *models.Settlement, logs []models.VarianceLog) {
	if config.SMTPHost == "" || config.AlertEmail == "" {
		return
	}
	if len(logs) == 0 {
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Settlement %d for store %d on %s was submitted with %d stock variance(s):</p>",
		settlement.ID, settlement.StoreID, settlement.SettlementDate.Format("2006-01-02"), len(logs))
	body.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Bird</th><th>Type</th><th>Expected (kg)</th><th>Declared (kg)</th><th>Variance (kg)</th></tr>")
	for _, l := range logs {
		fmt.Fprintf(&body, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			l.BirdType, l.InventoryType,
			l.ExpectedQty.StringFixed(3), l.DeclaredQty.StringFixed(3), l.VarianceQty.StringFixed(3))
	}
	body.WriteString("</table>")

	m := gomail.NewMessage()
	m.SetHeader("From", config.SMTPSender)
	m.SetHeader("To", config.AlertEmail)
	m.SetHeader("Subject", fmt.Sprintf("Stock variance alert: store %d, %s",
		settlement.StoreID, settlement.SettlementDate.Format("2006-01-02")))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		logrus.WithError(err).Warn("failed to send variance alert mail")
	}
}
