package resolve

import (
	"regexp"
	"strings"

	"github.com/kalyptra/ariadne/api/schemas"
)

// Free-text parameter extraction is a best-effort fallback for callers that
// send only a description. It is known to mis-parse ambiguous phrasing
// (multiple quoted substrings, nested clauses); the structured fields on
// schemas.ActionRequest are the primary interface and should be preferred.

var (
	quotedPattern     = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
	keyPattern        = regexp.MustCompile(`(?i)\bpress(?:es|ing)?\s+(?:the\s+)?['"]?([A-Za-z0-9+]+)['"]?(?:\s+key)?`)
	dragTargetPattern = regexp.MustCompile(`(?i)\b(?:onto|into|to)\s+(?:the\s+)?(.+?)\.?$`)
	typeVerbPattern   = regexp.MustCompile(`(?i)\b(type|enter|fill|write)\b`)
	selectVerbPattern = regexp.MustCompile(`(?i)\b(select|choose|pick)\b`)
	uploadVerbPattern = regexp.MustCompile(`(?i)\b(upload|attach)\b`)
	dragVerbPattern   = regexp.MustCompile(`(?i)\b(drag|drop|move)\b`)
	hoverVerbPattern  = regexp.MustCompile(`(?i)\b(hover|mouse over)\b`)
)

// inferActionType picks an action type from the description's verbs,
// constrained to what the matched record supports when that list is
// non-empty. Click is the default.
func inferActionType(description string, supported []schemas.ActionType) schemas.ActionType {
	guess := schemas.ActionClick
	switch {
	case uploadVerbPattern.MatchString(description):
		guess = schemas.ActionFileUpload
	case dragVerbPattern.MatchString(description):
		guess = schemas.ActionDrag
	case keyPattern.MatchString(description):
		guess = schemas.ActionPressKey
	case selectVerbPattern.MatchString(description):
		guess = schemas.ActionSelectOption
	case typeVerbPattern.MatchString(description):
		guess = schemas.ActionTypeText
	case hoverVerbPattern.MatchString(description):
		guess = schemas.ActionHover
	}
	if len(supported) == 0 {
		return guess
	}
	for _, a := range supported {
		if a == guess {
			return guess
		}
	}
	return supported[0]
}

// paramsFromRequest assembles dispatch parameters, preferring structured
// fields and falling back to text extraction per action type.
func paramsFromRequest(req schemas.ActionRequest, actionType schemas.ActionType) ActionParams {
	p := ActionParams{
		Text:   req.Text,
		Key:    req.Key,
		Values: req.Values,
		Files:  req.Files,
	}
	switch actionType {
	case schemas.ActionTypeText:
		if p.Text == "" {
			p.Text = firstQuoted(req.Description)
		}
	case schemas.ActionPressKey:
		if p.Key == "" {
			if m := keyPattern.FindStringSubmatch(req.Description); m != nil {
				p.Key = m[1]
			}
		}
	case schemas.ActionSelectOption:
		if len(p.Values) == 0 {
			p.Values = allQuoted(req.Description)
		}
	case schemas.ActionFileUpload:
		if len(p.Files) == 0 {
			p.Files = allQuoted(req.Description)
		}
	}
	return p
}

// extractDragTarget pulls the drop-target phrase out of a drag description,
// e.g. `drag the card onto the "Done" column` yields `the "Done" column`.
func extractDragTarget(description string) string {
	m := dragTargetPattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstQuoted(s string) string {
	m := quotedPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func allQuoted(s string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else if m[2] != "" {
			out = append(out, m[2])
		}
	}
	return out
}
