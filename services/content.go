package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"qrtrack/models"
)

// Typed payloads for the structured content types. Field sets follow the
// common QR payload schemes (vCard 3.0, WIFI:, mailto:, SMSTO:, geo:,
// iCalendar VEVENT).

type VCardPayload struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Website      string `json:"website,omitempty"`
	Note         string `json:"note,omitempty"`
}

type WiFiPayload struct {
	SSID       string `json:"ssid"`
	Password   string `json:"password,omitempty"`
	Encryption string `json:"encryption,omitempty"` // WPA, WEP or nopass
	Hidden     bool   `json:"hidden,omitempty"`
}

type EmailPayload struct {
	Address string `json:"address"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

type SMSPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

type GeoPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type EventPayload struct {
	Title    string     `json:"title"`
	Location string     `json:"location,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// ContentPayload carries the one payload matching the content type.
type ContentPayload struct {
	URL   string        `json:"url,omitempty"`
	Text  string        `json:"text,omitempty"`
	Phone string        `json:"phone,omitempty"`
	VCard *VCardPayload `json:"vcard,omitempty"`
	WiFi  *WiFiPayload  `json:"wifi,omitempty"`
	Email *EmailPayload `json:"email,omitempty"`
	SMS   *SMSPayload   `json:"sms,omitempty"`
	Geo   *GeoPayload   `json:"geo,omitempty"`
	Event *EventPayload `json:"event,omitempty"`
}

// FormatContent maps a typed payload to the text encoded into the QR
// symbol. Pure function, no I/O.
func FormatContent(contentType string, p ContentPayload) (string, error) {
	switch contentType {
	case models.ContentTypeURL:
		if p.URL == "" {
			return "", errors.New("url payload is required")
		}
		return p.URL, nil
	case models.ContentTypeText:
		if p.Text == "" {
			return "", errors.New("text payload is required")
		}
		return p.Text, nil
	case models.ContentTypePhone:
		if p.Phone == "" {
			return "", errors.New("phone payload is required")
		}
		return "tel:" + p.Phone, nil
	case models.ContentTypeVCard:
		if p.VCard == nil {
			return "", errors.New("vcard payload is required")
		}
		return formatVCard(p.VCard), nil
	case models.ContentTypeWiFi:
		if p.WiFi == nil || p.WiFi.SSID == "" {
			return "", errors.New("wifi payload with ssid is required")
		}
		return formatWiFi(p.WiFi), nil
	case models.ContentTypeEmail:
		if p.Email == nil || p.Email.Address == "" {
			return "", errors.New("email payload with address is required")
		}
		return formatEmail(p.Email), nil
	case models.ContentTypeSMS:
		if p.SMS == nil || p.SMS.Phone == "" {
			return "", errors.New("sms payload with phone is required")
		}
		return fmt.Sprintf("SMSTO:%s:%s", p.SMS.Phone, p.SMS.Message), nil
	case models.ContentTypeGeo:
		if p.Geo == nil {
			return "", errors.New("geo payload is required")
		}
		return fmt.Sprintf("geo:%g,%g", p.Geo.Latitude, p.Geo.Longitude), nil
	case models.ContentTypeEvent:
		if p.Event == nil || p.Event.Title == "" {
			return "", errors.New("event payload with title is required")
		}
		return formatEvent(p.Event), nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func formatVCard(v *VCardPayload) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\nVERSION:3.0\n")
	fmt.Fprintf(&b, "N:%s;%s\n", v.LastName, v.FirstName)
	fmt.Fprintf(&b, "FN:%s\n", strings.TrimSpace(v.FirstName+" "+v.LastName))
	if v.Organization != "" {
		fmt.Fprintf(&b, "ORG:%s\n", v.Organization)
	}
	if v.Title != "" {
		fmt.Fprintf(&b, "TITLE:%s\n", v.Title)
	}
	if v.Phone != "" {
		fmt.Fprintf(&b, "TEL:%s\n", v.Phone)
	}
	if v.Email != "" {
		fmt.Fprintf(&b, "EMAIL:%s\n", v.Email)
	}
	if v.Address != "" {
		fmt.Fprintf(&b, "ADR:%s\n", v.Address)
	}
	if v.Website != "" {
		fmt.Fprintf(&b, "URL:%s\n", v.Website)
	}
	if v.Note != "" {
		fmt.Fprintf(&b, "NOTE:%s\n", v.Note)
	}
	b.WriteString("END:VCARD")
	return b.String()
}

// escapeWiFi escapes the characters the WIFI: scheme treats specially.
func escapeWiFi(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)
	return r.Replace(s)
}

func formatWiFi(w *WiFiPayload) string {
	enc := w.Encryption
	if enc == "" {
		enc = "WPA"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "WIFI:T:%s;S:%s;", enc, escapeWiFi(w.SSID))
	if w.Password != "" {
		fmt.Fprintf(&b, "P:%s;", escapeWiFi(w.Password))
	}
	if w.Hidden {
		b.WriteString("H:true;")
	}
	b.WriteString(";")
	return b.String()
}

func formatEmail(e *EmailPayload) string {
	out := "mailto:" + e.Address
	params := []string{}
	if e.Subject != "" {
		params = append(params, "subject="+queryEscape(e.Subject))
	}
	if e.Body != "" {
		params = append(params, "body="+queryEscape(e.Body))
	}
	if len(params) > 0 {
		out += "?" + strings.Join(params, "&")
	}
	return out
}

// queryEscape keeps mailto parameters readable: only spaces and the
// separator characters are encoded.
func queryEscape(s string) string {
	r := strings.NewReplacer(" ", "%20", "&", "%26", "?", "%3F")
	return r.Replace(s)
}

func formatEvent(e *EventPayload) string {
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\n")
	fmt.Fprintf(&b, "SUMMARY:%s\n", e.Title)
	if e.Location != "" {
		fmt.Fprintf(&b, "LOCATION:%s\n", e.Location)
	}
	if e.Start != nil {
		fmt.Fprintf(&b, "DTSTART:%s\n", e.Start.UTC().Format("20060102T150405Z"))
	}
	if e.End != nil {
		fmt.Fprintf(&b, "DTEND:%s\n", e.End.UTC().Format("20060102T150405Z"))
	}
	b.WriteString("END:VEVENT")
	return b.String()
}
