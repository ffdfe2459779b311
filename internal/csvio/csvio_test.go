package csvio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/korean"
)

func TestRead_StripsBOMAndAllowsRaggedRows(t *testing.T) {
	in := "\ufeffa,b,c\n1,2,3\n4,5\n"
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	want := &Table{
		Header: []string{"a", "b", "c"},
		Rows:   [][]string{{"1", "2", "3"}, {"4", "5"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_Empty(t *testing.T) {
	if _, err := Read(strings.NewReader("")); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Read of empty input returned %v; want ErrNoHeader", err)
	}
}

func TestReadFile_CP949(t *testing.T) {
	src := "행정구역,성별,연령별\n전국,계,합계\n"
	enc, err := korean.EUCKR.NewEncoder().Bytes([]byte(src))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	p := filepath.Join(t.TempDir(), "wide.csv")
	if err := os.WriteFile(p, enc, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(p, "cp949")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if diff := cmp.Diff([]string{"행정구역", "성별", "연령별"}, got.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"전국", "계", "합계"}}, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDecoder_UnknownEncoding(t *testing.T) {
	if _, err := NewDecoder(strings.NewReader(""), "klingon-8"); err == nil {
		t.Fatal("NewDecoder accepted an unknown encoding")
	}
}

func TestWriteTable_PandasStyle(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	rows := [][]string{
		{"2020", "남자", "10.0"},
		{"2020", "a,b", `say "hi"`},
	}
	if err := WriteTable(p, []string{"연도", "성별", "값"}, rows); err != nil {
		t.Fatalf("WriteTable error: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "\ufeff연도,성별,값\n2020,남자,10.0\n2020,\"a,b\",\"say \"\"hi\"\"\"\n"
	if string(got) != want {
		t.Errorf("file contents:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriter_PythonTerminator(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b, PythonTerminator)
	if err := w.Write([]string{"x", " y", "multi\nline"}); err != nil {
		t.Fatal(err)
	}
	if got, want := b.String(), "x, y,\"multi\nline\"\r\n"; got != want {
		t.Errorf("Write produced %q; want %q", got, want)
	}
}

func TestFormatFloat(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{5, "5.0"},
		{1.5, "1.5"},
		{-2, "-2.0"},
		{123456789, "123456789.0"},
		{1e16, "1e+16"},
		{0.00001, "1e-05"},
	} {
		if got := FormatFloat(tc.in); got != tc.want {
			t.Errorf("FormatFloat(%v) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
