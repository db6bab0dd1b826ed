package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input the charset detector sees.
const sniffSize = 4096

type fileReader struct {
	io.Reader
	f *os.File
}

func (r *fileReader) Close() error { return r.f.Close() }

// Open opens a data file and returns a UTF-8 reader over it.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileReader{Reader: Decode(f), f: f}, nil
}

// Decode converts Latin-1 style input to UTF-8. Input whose sniffed prefix
// is valid UTF-8 is passed through unchanged, since the detector labels
// plain ASCII as iso-8859-1.
func Decode(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, sniffSize)

	peek, _ := br.Peek(sniffSize)
	if len(peek) == sniffSize {
		peek = trimPartialRune(peek)
	}
	if utf8.Valid(peek) {
		return br
	}

	cs := ""
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		cs = strings.ToLower(det.Charset)
	}

	switch cs {
	case "windows-1252":
		return transform.NewReader(br, charmap.Windows1252.NewDecoder())
	default:
		// invalid UTF-8 with no better label is read as Latin-1
		return transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	}
}

// trimPartialRune drops a multi-byte rune cut off at the end of the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}
