package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voice-translate-go/internal/language"
	"voice-translate-go/internal/types"
)

const (
	originalRule   = "====================="
	translatedRule = "==================="
	timestampFmt   = "20060102_150405"
)

// Document is the reassembled text of one file, one line per recognized chunk.
type Document struct {
	Original   []string
	Translated []string
}

// Assemble keeps the present results in chunk-index order, one line per chunk.
func Assemble(results []types.ChunkResult) Document {
	ordered := make([]types.ChunkResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	var doc Document
	for _, r := range ordered {
		if !r.Present() {
			continue
		}
		doc.Original = append(doc.Original, singleLine(r.Transcript))
		doc.Translated = append(doc.Translated, singleLine(r.Translation))
	}
	return doc
}

// singleLine folds all whitespace runs, newlines included, into single spaces so
// each chunk occupies exactly one line of its section.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// OutputPath names the document <base>_translation_<timestamp>.txt in dir.
func OutputPath(dir, base string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_translation_%s.txt", base, at.Format(timestampFmt)))
}

// Render formats the two labeled sections.
func Render(src, dest string, doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original Text (%s):\n", language.DisplayName(src))
	b.WriteString(originalRule + "\n")
	b.WriteString(strings.Join(doc.Original, "\n"))
	fmt.Fprintf(&b, "\n\n%s Translation:\n", language.DisplayName(dest))
	b.WriteString(translatedRule + "\n")
	b.WriteString(strings.Join(doc.Translated, "\n"))
	return b.String()
}

// maxNameAttempts bounds the suffixes tried when the document name is taken.
const maxNameAttempts = 100

// WriteDocument writes the rendered document and returns the path it landed at.
// An existing document is never replaced: when path is taken the name gets a
// numeric suffix (_2, _3, ...). A failed write leaves no file behind.
func WriteDocument(path, src, dest string, doc Document) (string, error) {
	final, err := reserve(path)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(final), "."+filepath.Base(final)+".*")
	if err != nil {
		os.Remove(final)
		return "", fmt.Errorf("create output: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(tmpName)
		os.Remove(final)
		return "", fmt.Errorf("write output: %w", err)
	}
	if _, err := tmp.WriteString(Render(src, dest, doc)); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fail(err)
	}
	// final is an empty placeholder this call created, so replacing it is safe
	if err := os.Rename(tmpName, final); err != nil {
		return fail(err)
	}
	return final, nil
}

// reserve claims path, or the first free suffixed variant of it, by creating an
// empty placeholder with O_EXCL.
func reserve(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := path
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create output: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(candidate)
			return "", fmt.Errorf("create output: %w", err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("create output: no free name for %s after %d attempts", path, maxNameAttempts)
}
