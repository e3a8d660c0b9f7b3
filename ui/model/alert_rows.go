package model

import (
	"time"

	"github.com/soocke/zone-console/domain/alerts"
)

// AlertRow is one formatted line of the alert list.
type AlertRow struct {
	Key        string
	Icon       string
	Message    string
	Time       string
	Confidence string
}

// Placeholder lines shown while the alert list is empty.
var EmptyAlertsText = []string{"Waiting for real movement alerts...", "Move a chair to see alerts!"}

// AlertRows formats a buffer snapshot oldest first. loc selects the clock
// used for the time column; nil means time.Local.
func AlertRows(as []alerts.Alert, loc *time.Location) []AlertRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]AlertRow, len(as))
	for i, a := range as {
		rows[i] = AlertRow{
			Key:        a.ID,
			Icon:       alerts.Classify(a.Kind).Icon,
			Message:    alerts.Describe(a),
			Time:       a.Time().In(loc).Format(time.TimeOnly),
			Confidence: alerts.ConfidenceText(a),
		}
	}
	return rows
}

// Text renders the row as a single list entry.
func (r AlertRow) Text() string {
	s := r.Icon + "  " + r.Time + "  " + r.Message
	if r.Confidence != "" {
		s += "  (" + r.Confidence + ")"
	}
	return s
}

// AlertKeys returns the row keys in order.
func AlertKeys(rows []AlertRow) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}
