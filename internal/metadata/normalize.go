package metadata

import (
	"strconv"
	"strings"
)

// Normalize extracts a best-effort title, descriptive text and subject list
// from a raw OpenBD item. Every field access is defensive: a fragment with
// an unexpected shape is skipped, never fatal.
func Normalize(item map[string]any) Record {
	return Record{
		Title:    extractTitle(item),
		Text:     extractText(item),
		Subjects: extractSubjects(item),
	}
}

// extractTitle tries the flat summary title first, then walks the ONIX
// TitleDetail structure, where TitleDetail and TitleElement may each be a
// single object or a list, and TitleText may be a bare string or an object
// wrapping its text in "content" or "Text".
func extractTitle(item map[string]any) string {
	if title := stringify(asMap(item["summary"])["title"]); title != "" {
		return title
	}

	descriptive := asMap(asMap(item["onix"])["DescriptiveDetail"])
	for _, td := range asList(descriptive["TitleDetail"]) {
		for _, te := range asList(asMap(td)["TitleElement"]) {
			titleText := asMap(te)["TitleText"]
			if wrapped, ok := titleText.(map[string]any); ok {
				if content := stringify(wrapped["content"]); content != "" {
					return content
				}
				if content := stringify(wrapped["Text"]); content != "" {
					return content
				}
				continue
			}
			if text := stringify(titleText); text != "" {
				return text
			}
		}
	}
	return ""
}

// extractText concatenates the summary description with every element of
// CollateralDetail.TextContent, joined by blank lines and trimmed.
func extractText(item map[string]any) string {
	var parts []string

	summary := asMap(item["summary"])
	if s := stringify(summary["description"]); s != "" {
		parts = append(parts, s)
	} else if s := stringify(summary["content"]); s != "" {
		parts = append(parts, s)
	}

	collateral := asMap(asMap(item["onix"])["CollateralDetail"])
	for _, tc := range asList(collateral["TextContent"]) {
		entry, ok := tc.(map[string]any)
		if !ok {
			continue
		}
		var text string
		if tv, present := entry["Text"]; present {
			if wrapped, ok := tv.(map[string]any); ok {
				text = stringify(wrapped["content"])
				if text == "" {
					text = stringify(wrapped["Text"])
				}
			} else {
				text = stringify(tv)
			}
		} else {
			// Sometimes the text is nested differently
			text = stringify(entry["TextContent"])
			if text == "" {
				text = stringify(entry["content"])
			}
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// extractSubjects scans the ONIX Subject list in source order. Code-like
// fields win over heading-like fields; entries contributing neither are
// skipped.
func extractSubjects(item map[string]any) []string {
	var subjects []string

	descriptive := asMap(asMap(item["onix"])["DescriptiveDetail"])
	for _, s := range asList(descriptive["Subject"]) {
		entry, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if code := firstString(entry, "SubjectCode", "SubjectCodeValue", "Code"); code != "" {
			subjects = append(subjects, code)
			continue
		}
		if heading := firstString(entry, "SubjectHeadingText", "Text", "SubjectHeading"); heading != "" {
			subjects = append(subjects, heading)
		}
	}
	return subjects
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringify(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// asMap returns v as an object, or an empty map for any other shape so that
// chained lookups stay total.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asList normalizes "object or list of objects" fields: a list is returned
// as-is, nil yields nothing, anything else is wrapped as a single element.
func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	default:
		return []any{val}
	}
}

// stringify converts a scalar JSON value to a string; subject codes
// occasionally arrive as numbers.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
