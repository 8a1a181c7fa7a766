package orchestrator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillscan/skillscan/internal/model"
	"github.com/skillscan/skillscan/internal/rules"
)

// commentPrefixByExt is the narrow fix-mode allowlist: markdown/config
// text, shell, Python, and JS/TS get a language-appropriate line-comment
// prefix. JSON is deliberately excluded — there is no way to comment out a
// line of JSON without breaking the document.
var commentPrefixByExt = map[string]string{
	".md":   "<!-- ",
	".txt":  "# ",
	".cfg":  "# ",
	".conf": "# ",
	".ini":  "# ",
	".sh":   "# ",
	".bash": "# ",
	".py":   "# ",
	".js":   "// ",
	".ts":   "// ",
	".jsx":  "// ",
	".tsx":  "// ",
}

// ApplyFixes inserts a comment prefix on the matched line of every
// signature finding whose file extension is allowlisted. Findings are
// grouped per (file, line) first so duplicate findings on one line produce
// exactly one edit, and heuristic findings are filtered out before
// grouping since they are never auto-fixed.
func ApplyFixes(findings []model.Finding) error {
	type key struct {
		file string
		line int
	}
	toFix := make(map[key]bool)

	for _, f := range findings {
		if f.Source != rules.SourceSignature {
			continue
		}
		if f.Line <= 0 {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.File))
		if _, ok := commentPrefixByExt[ext]; !ok {
			continue
		}
		toFix[key{f.File, f.Line}] = true
	}

	byFile := make(map[string][]int)
	for k := range toFix {
		byFile[k.file] = append(byFile[k.file], k.line)
	}

	for file, lines := range byFile {
		prefix := commentPrefixByExt[strings.ToLower(filepath.Ext(file))]
		if err := commentLines(file, lines, prefix); err != nil {
			return fmt.Errorf("fix %s: %w", file, err)
		}
	}
	return nil
}

func commentLines(path string, lineNumbers []int, prefix string) error {
	wanted := make(map[int]bool, len(lineNumbers))
	for _, n := range lineNumbers {
		wanted[n] = true
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	var out []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if wanted[lineNum] {
			text = prefix + text
		}
		out = append(out, text)
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		return scanErr
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), info.Mode())
}
