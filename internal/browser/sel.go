package browser

import (
	"fmt"
	"strings"
)

// IsXPath reports whether sel is treated as an XPath expression rather
// than a CSS selector.
func IsXPath(sel string) bool {
	return strings.HasPrefix(sel, "//") || strings.HasPrefix(sel, "(")
}

// ByPlaceholder matches an input by its placeholder text, exact.
func ByPlaceholder(text string) string {
	return fmt.Sprintf(`input[placeholder=%q]`, text)
}

// ByName matches a form field by its name attribute, exact.
func ByName(tag, name string) string {
	return fmt.Sprintf(`%s[name=%q]`, tag, name)
}

// ButtonByName matches a button by its visible name.
func ButtonByName(name string) string {
	return fmt.Sprintf(`//button[contains(normalize-space(.), %s)]`, XPathString(name))
}

// ByExactText matches any element whose own text equals text.
func ByExactText(text string) string {
	return fmt.Sprintf(`//*[normalize-space(text())=%s]`, XPathString(text))
}

// LabelByText matches a label element containing text.
func LabelByText(text string) string {
	return fmt.Sprintf(`//label[contains(normalize-space(.), %s)]`, XPathString(text))
}

// RowContaining matches a table row whose content contains text, with an
// optional inner XPath appended (relative, starting with "//").
func RowContaining(text, inner string) string {
	return fmt.Sprintf(`//tr[contains(., %s)]%s`, XPathString(text), inner)
}

// RowWithExactText matches a table row containing a text node equal to
// text, with an optional inner XPath appended.
func RowWithExactText(text, inner string) string {
	return fmt.Sprintf(`//tr[.//text()[normalize-space(.)=%s]]%s`, XPathString(text), inner)
}

// XPathString quotes s as an XPath string literal, splitting into a
// concat() call when s contains both quote kinds.
func XPathString(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	// Mixed quotes: concat('...', "'", '...')
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
