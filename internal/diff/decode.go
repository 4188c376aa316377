package diff

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadText reads a file as UTF-8 text. Invalid byte sequences are dropped
// and a leading byte order mark is removed; neither is an error.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeText(data), nil
}

// DecodeText converts raw bytes to text on a best-effort basis.
func DecodeText(data []byte) string {
	s := strings.ToValidUTF8(string(data), "")
	out, _, err := transform.String(unicode.UTF8BOM.NewDecoder(), s)
	if err != nil {
		return s
	}
	return out
}

// SplitLines splits text into lines, keeping line terminators.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
