package errors

import (
	"fmt"
	"strings"
)

// UnresolvedHandleHint builds the fix suggestion shown for an unknown handle.
//
// similar lists handles that match the value case-insensitively or by
// substring. freeTextField names the front matter field that accepts people
// who are not members; it is empty for fields without such an escape hatch.
func UnresolvedHandleHint(value string, similar []string, freeTextField string) string {
	var hints []string

	for _, s := range similar {
		if strings.EqualFold(s, value) {
			hints = append(hints, fmt.Sprintf("handles are case-sensitive, did you mean %q?", s))
			break
		}
	}

	if len(hints) == 0 && len(similar) > 0 {
		hints = append(hints, fmt.Sprintf("did you mean %q?", similar[0]))
	}

	hints = append(hints, "use the member's ascii_name, not their display name")

	if freeTextField != "" {
		hints = append(hints, fmt.Sprintf("if this person is not a club member, list them in `%s` instead", freeTextField))
	}

	return strings.Join(hints, "; ")
}

// UnknownWorkHint builds the fix suggestion for an on-site track that does
// not match any loaded work.
func UnknownWorkHint(title, author string) string {
	return fmt.Sprintf(
		"no work titled %q by %q exists under works/; fix the title or set on_site = false",
		title, author,
	)
}
