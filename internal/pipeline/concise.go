package pipeline

import (
	"bufio"
	"io"
	"strings"
)

// ParseConcisePlan reads the pipeline's alternate input format (spec §4.6
// input (b)): one directory name per line, optionally followed by a
// per-entry script override, separated by blanks. Comments ("#"-prefixed)
// and blank lines are ignored, matching planfile's own line conventions.
func ParseConcisePlan(r io.Reader) []Entry {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		e := Entry{Dir: fields[0]}
		if len(fields) > 1 {
			e.ScriptOverride = fields[1]
		}
		entries = append(entries, e)
	}

	return entries
}

// EntriesFromDirs builds pipeline Entries from a plain list of resolved
// target directories, e.g. the targets of a Plan's actions (spec §4.6 input
// (a)). No per-entry script override is set.
func EntriesFromDirs(dirs []string) []Entry {
	entries := make([]Entry, 0, len(dirs))
	for _, d := range dirs {
		entries = append(entries, Entry{Dir: d})
	}
	return entries
}
