package markdown

import (
	"regexp"
	"strings"
)

// AlertClass is the normalized styling class of an alert box.
type AlertClass string

const (
	AlertInfo    AlertClass = "info"
	AlertSuccess AlertClass = "success"
	AlertWarning AlertClass = "warning"
	AlertError   AlertClass = "error"
)

var alertPattern = regexp.MustCompile(`^>\s*\[!(\w+)\](.*)$`)

// alertStyle is the class and icon an alert kind renders with.
type alertStyle struct {
	class AlertClass
	icon  string
}

// classifyAlert maps an alert kind, case-insensitively, to its class and
// icon. Unrecognized kinds render as info.
func classifyAlert(kind string) alertStyle {
	switch strings.ToLower(kind) {
	case "note", "info":
		return alertStyle{AlertInfo, "ℹ️"}
	case "tip", "success", "hint":
		return alertStyle{AlertSuccess, "✅"}
	case "warning", "warn":
		return alertStyle{AlertWarning, "⚠️"}
	case "caution", "error", "danger":
		return alertStyle{AlertError, "❌"}
	case "important":
		return alertStyle{AlertWarning, "❗"}
	default:
		return alertStyle{AlertInfo, "ℹ️"}
	}
}

// matchAlert reports whether a trimmed line opens an alert, returning the
// kind as written and any trailing text.
func matchAlert(line string) (kind, rest string, ok bool) {
	m := alertPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

func alertOpenTag(kind string) string {
	style := classifyAlert(kind)
	var b strings.Builder
	b.WriteString(`<div class="` + classAlert + ` ` + classAlert + `-` + string(style.class) + `">`)
	b.WriteString(`<div class="` + classAlertHeader + `">`)
	b.WriteString(`<span class="` + classAlertIcon + `">` + style.icon + `</span>`)
	b.WriteString(`<span class="` + classAlertTitle + `">` + escapeHTML(strings.ToUpper(kind)) + `</span>`)
	b.WriteString(`</div>`)
	b.WriteString(`<div class="` + classAlertContent + `">`)
	return b.String()
}
