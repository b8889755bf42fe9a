package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

// Delimiter separates the front matter block from the Markdown body.
const Delimiter = "==="

// SplitFrontMatter splits src at the first line consisting only of the
// delimiter. Whitespace around the delimiter on that line is ignored.
func SplitFrontMatter(path, src string) (front, body string, err error) {
	offset := 0
	for offset <= len(src) {
		end := strings.IndexByte(src[offset:], '\n')
		var line string
		next := len(src) + 1
		if end < 0 {
			line = src[offset:]
		} else {
			line = src[offset : offset+end]
			next = offset + end + 1
		}

		if strings.TrimSpace(line) == Delimiter {
			front = src[:offset]
			if next <= len(src) {
				body = src[next:]
			}
			return front, body, nil
		}
		offset = next
	}

	return "", "", siteerrors.NewMalformedError(
		siteerrors.ErrCodeMissingDelimiter,
		path,
		"front matter delimiter not found",
		nil,
	).WithHint("separate the TOML front matter from the body with a line containing only " + Delimiter)
}

// decodeFrontMatter unmarshals TOML into v. Unknown keys are rejected so a
// misspelt reference field cannot skip validation.
func decodeFrontMatter(path, front string, v interface{}) error {
	dec := toml.NewDecoder(strings.NewReader(front)).DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		se := siteerrors.NewMalformedError(siteerrors.ErrCodeFrontMatter, path, "invalid front matter", err)
		var (
			derr   *toml.DecodeError
			strict *toml.StrictMissingError
		)
		switch {
		case errors.As(err, &strict) && len(strict.Errors) > 0:
			key := strings.Join(strict.Errors[0].Key(), ".")
			row, _ := strict.Errors[0].Position()
			se.WithField(key, "").WithHint(fmt.Sprintf("unknown key %q on line %d of the front matter", key, row))
		case errors.As(err, &derr):
			row, col := derr.Position()
			se.WithHint(fmt.Sprintf("check line %d, column %d of the front matter", row, col))
		}
		return se
	}
	return nil
}
