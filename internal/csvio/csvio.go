// Package csvio reads and writes the CSV dialects the pipelines exchange:
// BOM-prefixed UTF-8 in the pandas style, Python csv-module records, and
// legacy-encoded inputs.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"wrangle/internal/filewriter"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Line terminators used by the two writers the original data came from.
const (
	PandasTerminator = "\n"   // DataFrame.to_csv
	PythonTerminator = "\r\n" // csv.writer
)

// ErrNoHeader is returned when a CSV has no header record.
var ErrNoHeader = errors.New("csv has no header")

// Table is a header plus raw string records.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewDecoder wraps r so that it yields UTF-8 from the named encoding.
// "cp949" has no WHATWG label, so it is mapped to EUC-KR here.
func NewDecoder(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return r, nil
	case "cp949", "ms949", "uhc", "euc-kr":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	}
	e, err := htmlindex.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", enc, err)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

// Read parses all of r. A leading UTF-8 BOM is dropped, ragged rows are
// allowed and a stray quote inside an unquoted field is kept as text.
// Line breaks inside quoted fields come back as "\n".
func Read(r io.Reader) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, bom)
	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	} else if err != nil {
		return nil, err
	}
	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// ReadFile opens path and parses it after decoding from enc.
func ReadFile(path, enc string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewDecoder(f, enc)
	if err != nil {
		return nil, err
	}
	t, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return t, nil
}

// WriteTable atomically writes a BOM-prefixed UTF-8 CSV with "\n" line
// endings, which is what pandas produces for encoding="utf-8-sig".
func WriteTable(path string, header []string, rows [][]string) error {
	fw, err := filewriter.New(path)
	if err != nil {
		return err
	}
	if _, err := fw.Write(bom); err != nil {
		fw.Abort()
		return err
	}
	w := NewWriter(fw, PandasTerminator)
	if err := w.Write(header); err != nil {
		fw.Abort()
		return err
	}
	for _, rec := range rows {
		if err := w.Write(rec); err != nil {
			fw.Abort()
			return err
		}
	}
	return fw.Close()
}

// Writer emits minimally quoted records with a fixed terminator.
// encoding/csv only knows "\n" and "\r\n" via UseCRLF and quotes fields with
// leading spaces, which Python's csv module does not.
type Writer struct {
	w          io.Writer
	terminator string
}

// NewWriter returns a Writer that ends every record with terminator.
func NewWriter(w io.Writer, terminator string) *Writer {
	return &Writer{w: w, terminator: terminator}
}

// Write writes one record.
func (cw *Writer) Write(rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(cw.w, ","); err != nil {
				return err
			}
		}
		if needsQuote(field) {
			if _, err := io.WriteString(cw.w, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`); err != nil {
				return err
			}
		} else if _, err := io.WriteString(cw.w, field); err != nil {
			return err
		}
	}
	_, err := io.WriteString(cw.w, cw.terminator)
	return err
}

func needsQuote(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}

// FormatFloat renders f the way Python's repr(float) does: integral floats
// keep a trailing ".0", exponent notation only outside [1e-4, 1e16), and NaN
// becomes an empty cell.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
