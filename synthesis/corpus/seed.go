// Package corpus handles real-world seed material for the synthesis engine: parsing deduplicated
// call-chain files mined from downstream code, replaying them against the dependency graph, and
// persisting selected sequences to an on-disk store.
package corpus

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SeedChain is one mined call chain: the ordered function names observed in downstream code and
// the number of times this exact chain occurred in the mined corpus.
type SeedChain struct {
	Functions []string
	Frequency int64
}

// ParseSeedLines parses a deduplicated seed-chain listing. Each non-empty line holds
// pipe-separated fields: the second field carries the occurrence count (non-digit characters are
// ignored around it) and the last field carries the space-separated function names of the chain.
func ParseSeedLines(reader io.Reader) ([]SeedChain, error) {
	var chains []SeedChain

	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			return nil, errors.Errorf("malformed seed chain on line %d: expected pipe-separated fields", lineNumber)
		}

		var digits strings.Builder
		for _, c := range fields[1] {
			if c >= '0' && c <= '9' {
				digits.WriteRune(c)
			}
		}
		if digits.Len() == 0 {
			return nil, errors.Errorf("malformed seed chain on line %d: no occurrence count in %q", lineNumber, fields[1])
		}
		frequency, err := strconv.ParseInt(digits.String(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed seed chain on line %d", lineNumber)
		}

		var functions []string
		for _, name := range strings.Split(fields[len(fields)-1], " ") {
			if len(name) > 1 {
				functions = append(functions, name)
			}
		}
		if len(functions) == 0 {
			continue
		}

		chains = append(chains, SeedChain{Functions: functions, Frequency: frequency})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return chains, nil
}

// ReadSeedFile parses a seed-chain listing from the file at the given path.
func ReadSeedFile(path string) ([]SeedChain, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()
	return ParseSeedLines(file)
}
