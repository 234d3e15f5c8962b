// Package content loads book text and splits it into paragraphs.
package content

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a book file and returns its paragraphs.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only book file.
			_ = cerr
		}
	}()

	var paragraphs []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("book is empty")
	}
	return paragraphs, nil
}

// Split partitions raw text into paragraphs: split on line breaks, drop
// blank and whitespace-only entries.
func Split(raw string) []string {
	lines := strings.Split(raw, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}
