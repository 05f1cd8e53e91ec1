package preview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// DecodeText decodes raw content bytes to a string.
//
// UTF-8 is tried first. When the bytes are not valid UTF-8 the decode is
// retried once with GBK, the legacy encoding of historical uploads. No
// third encoding is ever attempted; if the GBK result still contains
// replacement markers the content is declared undecodable.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("gbk decode: %w", ErrUndecodable)
	}
	text := string(decoded)
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", ErrUndecodable
	}
	return text, nil
}
