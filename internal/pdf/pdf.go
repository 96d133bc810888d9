// Package pdf turns uploaded PDF files into text a question generator can use.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultChunkSize matches the context the generators are prompted with.
const DefaultChunkSize = 8000

var ErrNoText = errors.New("pdf contains no extractable text")

// ExtractText returns the plain text of every page in the file at path.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}

// Clean collapses every run of whitespace into a single space.
func Clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk splits text into pieces of at most max runes. A piece ends at the
// last '.' in its window when that falls in the second half of the window.
func Chunk(text string, max int) []string {
	if max <= 0 {
		max = DefaultChunkSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + max
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		for i := end - 1; i > start+max/2; i-- {
			if runes[i] == '.' {
				end = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}

// Process extracts, cleans and chunks a PDF, returning every chunk.
func Process(path string, max int) ([]string, error) {
	raw, err := ExtractText(path)
	if err != nil {
		return nil, err
	}
	chunks := Chunk(Clean(raw), max)
	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	return chunks, nil
}
