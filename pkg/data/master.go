package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// MasterEntry holds the dropdown target texts configured for one DP code.
type MasterEntry struct {
	City string
	RK   string
	Row  int // 1-based line number in the source file, for diagnostics
}

// requiredColumns are the headers the master data CSV must provide.
var requiredColumns = []string{"Kode_DP", "City", "RK"}

// LoadMasterData reads the master data CSV keyed by DP code.
// Rows with a blank code, city, or RK are skipped. The file may be comma or
// semicolon separated and may start with a UTF-8 BOM.
func LoadMasterData(path string) (map[string]MasterEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open master data file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	stripBOM(reader)

	delim, err := sniffDelimiter(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read master data file: %w", err)
	}

	cr := csv.NewReader(reader)
	cr.Comma = delim
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("master data file is empty or invalid: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("master data file missing columns: %s", strings.Join(missing, ", "))
	}

	entries := make(map[string]MasterEntry)
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, keep loading the rest
			continue
		}

		code := fieldAt(record, index["Kode_DP"])
		city := fieldAt(record, index["City"])
		rk := fieldAt(record, index["RK"])
		if code == "" || city == "" || rk == "" {
			continue
		}

		entries[code] = MasterEntry{City: city, RK: rk, Row: row}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid entries in master data file %s", path)
	}

	return entries, nil
}

func fieldAt(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// stripBOM consumes a leading UTF-8 byte order mark if present.
func stripBOM(r *bufio.Reader) {
	bom, err := r.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		r.Discard(3)
	}
}

// sniffDelimiter peeks at the header line and picks semicolon when the file
// uses it instead of commas. Exported CSVs from the intranet vary.
func sniffDelimiter(r *bufio.Reader) (rune, error) {
	const peekSize = 1024
	sample, err := r.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, err
	}
	line := string(sample)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';', nil
	}
	return ',', nil
}
