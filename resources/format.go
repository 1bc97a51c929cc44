package resources

import (
	"strconv"
	"strings"
)

// String formats recognized in a resource store. Windows Resource
// (wrc) strings carry %N insertion placeholders and %-escapes,
// pep3101 strings already use positional {N} placeholders.
const (
	StringFormatWRC     = "wrc"
	StringFormatPEP3101 = "pep3101"
)

// FormatMessageStringInPEP3101 converts a Windows Resource format
// message string into positional placeholder form: %1 becomes {0},
// %2 becomes {1} and so on. Escape sequences are expanded, %0
// terminates the message.
func FormatMessageStringInPEP3101(message_string string) string {
	if message_string == "" {
		return message_string
	}

	builder := &strings.Builder{}

	for idx := 0; idx < len(message_string); idx++ {
		char := message_string[idx]
		if char != '%' || idx+1 >= len(message_string) {
			builder.WriteByte(char)
			continue
		}

		next := message_string[idx+1]
		switch next {
		case '%':
			builder.WriteByte('%')
			idx++
			continue

		case 'n':
			builder.WriteByte('\n')
			idx++
			continue

		case 'r':
			builder.WriteByte('\r')
			idx++
			continue

		case 't':
			builder.WriteByte('\t')
			idx++
			continue

		case 'b':
			builder.WriteByte(' ')
			idx++
			continue

		case '0':
			// %0 terminates the message without a trailing newline.
			return builder.String()
		}

		if next >= '1' && next <= '9' {
			end := idx + 2
			if end < len(message_string) &&
				message_string[end] >= '0' && message_string[end] <= '9' {
				end++
			}

			number, err := strconv.Atoi(message_string[idx+1 : end])
			if err == nil && number >= 1 {
				builder.WriteString("{")
				builder.WriteString(strconv.Itoa(number - 1))
				builder.WriteString("}")
				idx = end - 1
				continue
			}
		}

		builder.WriteByte(char)
	}

	return builder.String()
}
