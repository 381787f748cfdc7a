package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadList reads an input list: one file path per line. Blank lines and
// lines starting with '#' are skipped.
//
// Relative entries are resolved against the directory holding the list, so
// a list can sit next to the download pages it names. An entry listed twice
// is returned once, at its first position.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Dir(path)
	seen := make(map[string]bool)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}
