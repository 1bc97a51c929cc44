package acstore

import (
	"strings"
)

// TranslateFilterExpression converts a container filter expression
// such as
//
//	provider_identifier == "some-guid" and identifier == 123
//
// into a SQL condition. Only equality and conjunction are supported
// by filter expressions. Quoted values are passed through unmodified.
func TranslateFilterExpression(filter_expression string) string {
	if filter_expression == "" {
		return ""
	}

	builder := &strings.Builder{}
	in_string := false

	for idx := 0; idx < len(filter_expression); idx++ {
		char := filter_expression[idx]

		if char == '"' {
			in_string = !in_string
			builder.WriteByte(char)
			continue
		}

		if in_string {
			builder.WriteByte(char)
			continue
		}

		// == becomes =
		if char == '=' && idx+1 < len(filter_expression) &&
			filter_expression[idx+1] == '=' {
			builder.WriteByte('=')
			idx++
			continue
		}

		// The keyword "and" becomes AND.
		if hasKeywordAt(filter_expression, idx, "and") {
			builder.WriteString("AND")
			idx += 2
			continue
		}

		if hasKeywordAt(filter_expression, idx, "or") {
			builder.WriteString("OR")
			idx++
			continue
		}

		builder.WriteByte(char)
	}

	return builder.String()
}

// hasKeywordAt checks for a whole word match at the given offset.
func hasKeywordAt(expression string, offset int, keyword string) bool {
	end := offset + len(keyword)
	if end > len(expression) {
		return false
	}

	if expression[offset:end] != keyword {
		return false
	}

	if offset > 0 && isWordByte(expression[offset-1]) {
		return false
	}

	if end < len(expression) && isWordByte(expression[end]) {
		return false
	}

	return true
}

func isWordByte(char byte) bool {
	return char == '_' ||
		(char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}
