package data

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadDailyInput reads the daily work list: one DP code per line.
// Blank lines and lines starting with '#' are skipped; duplicates are
// dropped, keeping the first occurrence so input order is preserved.
func ReadDailyInput(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open daily input file: %w", err)
	}
	defer file.Close()

	seen := make(map[string]bool)
	var codes []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily input file: %w", err)
	}

	return codes, nil
}
