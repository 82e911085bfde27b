package charset

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestDecoder(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		name  string
		in    []byte
		expct string
	}
	cases := []testdata{
		{"", []byte("plain \xff bytes"), "plain \xff bytes"},
		{"utf-8", []byte("caf\xc3\xa9"), "café"},
		{"UTF8", []byte("bad \xff"), "bad \uFFFD"},
		{"latin1", []byte("caf\xe9"), "café"},
		{"ISO-8859-1", []byte("\xfcber"), "über"},
		{"windows-1252", []byte("\x80 5"), "€ 5"},
		{"utf-16le", []byte("A\x00B\x00C\x00"), "ABC"},
		{"utf-16be", []byte("\x00A\x00B"), "AB"},
		{"utf-16", []byte("\xfe\xff\x00H\x00i"), "Hi"},
		{" Latin1 ", []byte{}, ""},
	}
	for _, tc := range cases {
		decode, err := Decoder(tc.name)
		is.NoErr(err)
		out, err := decode(tc.in)
		is.NoErr(err)
		is.Equal(string(out), tc.expct)
	}
}

func TestLookupUnknown(t *testing.T) {
	is := is.New(t)
	_, err := Lookup("ebcdic")
	is.True(errors.Is(err, ErrUnknownEncoding))

	decode, err := Decoder("shift-klingon")
	is.True(errors.Is(err, ErrUnknownEncoding))
	is.True(decode == nil)
}
