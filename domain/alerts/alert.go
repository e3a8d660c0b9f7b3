package alerts

import (
	"fmt"
	"time"
)

// Alert kinds emitted by the detection backend, plus the synthetic
// connection kinds produced locally.
const (
	KindNoHeadgear           = "no_headgear"
	KindZoneViolation        = "zone_violation"
	KindChairMovedWithPerson = "chair_moved_with_person"
	KindChairMovedAlone      = "chair_moved_alone"
	KindPersonWalking        = "person_walking"
	KindConnectionTest       = "connection_test"
	KindConnectionConfirmed  = "connection_confirmed"
	KindSystemReady          = "system_ready"
)

// Alert is one detection event. Optional fields are zero when absent.
type Alert struct {
	Kind       string    `json:"type"`
	Timestamp  float64   `json:"timestamp"`
	BBox       []float64 `json:"bbox,omitempty"`
	ZoneID     string    `json:"zone_id,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Message    string    `json:"message,omitempty"`

	// Set on receipt.
	ID         string    `json:"-"`
	ReceivedAt time.Time `json:"-"`
}

// Time converts the epoch-seconds timestamp.
func (a Alert) Time() time.Time {
	sec := int64(a.Timestamp)
	nsec := int64((a.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Presentation is the icon and title shown for an alert kind.
type Presentation struct {
	Icon  string
	Title string
}

var presentations = map[string]Presentation{
	KindNoHeadgear:           {Icon: "⚠️", Title: "No head protection"},
	KindZoneViolation:        {Icon: "🚫", Title: "Zone violation"},
	KindChairMovedWithPerson: {Icon: "🪑", Title: "Chair moved"},
	KindChairMovedAlone:      {Icon: "🚨", Title: "Chair moved alone"},
	KindPersonWalking:        {Icon: "🚶", Title: "Person walking"},
	KindConnectionTest:       {Icon: "🔗", Title: "Connection"},
	KindConnectionConfirmed:  {Icon: "✅", Title: "Connection confirmed"},
	KindSystemReady:          {Icon: "🚀", Title: "System ready"},
}

// FallbackIcon is used for kinds without a presentation entry.
const FallbackIcon = "🔔"

// Classify maps an alert kind to its presentation.
func Classify(kind string) Presentation {
	if p, ok := presentations[kind]; ok {
		return p
	}
	return Presentation{Icon: FallbackIcon, Title: kind}
}

// Describe returns the alert's own message or a default for its kind.
func Describe(a Alert) string {
	if a.Message != "" {
		return a.Message
	}
	switch a.Kind {
	case KindChairMovedWithPerson:
		return "Person moving chair detected"
	case KindChairMovedAlone:
		return "SUSPICIOUS: Chair moving without visible person"
	default:
		return "Alert: " + a.Kind
	}
}

// ConfidenceText formats the confidence as a percentage, or "" when absent or zero.
func ConfidenceText(a Alert) string {
	if a.Confidence == nil || *a.Confidence == 0 {
		return ""
	}
	return fmt.Sprintf("Confidence: %.1f%%", *a.Confidence*100)
}
