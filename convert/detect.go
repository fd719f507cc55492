package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// ErrNotText is returned for sources which look like binary files.
var ErrNotText = errors.New("source is not a text file")

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUnknown:
		return "unknown"
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	}
	return fmt.Sprintf("srcEncoding(%d)", int(e))
}

// sniffLen is how much of the source is looked at to decide its type.
const sniffLen = 512

var stylesheetType = filetype.NewType("css", "text/css")

func init() {
	filetype.AddMatcher(stylesheetType, func(buf []byte) bool {
		if isUTF8BOM3(buf) {
			buf = buf[3:]
		}
		return bytes.HasPrefix(buf, []byte(`@charset "`))
	})
}

// isArchiveFile reports whether path is a zip archive sources could be
// converted from.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	buf, err := readHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(buf, "zip"), nil
}

// sniffSource checks that file at path is not some known binary format and
// detects its Unicode encoding by BOM.
func sniffSource(path string) (srcEncoding, error) {
	buf, err := readHeader(path)
	if err != nil {
		return encUnknown, err
	}
	return sniff(buf)
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func sniff(buf []byte) (srcEncoding, error) {
	if len(buf) == 0 {
		return encUnknown, nil
	}
	if len(buf) > sniffLen {
		buf = buf[:sniffLen]
	}

	kind, _ := filetype.Match(buf)
	if kind != filetype.Unknown && kind != stylesheetType {
		return encUnknown, fmt.Errorf("%w (%s)", ErrNotText, kind.MIME.Value)
	}
	enc := detectUTF(buf)
	switch enc {
	case encUnknown, encUTF8:
		if bytes.IndexByte(buf, 0) >= 0 {
			return encUnknown, ErrNotText
		}
	}
	return enc, nil
}

func detectUTF(buf []byte) srcEncoding {
	// UTF-32 has to go first, its little endian BOM starts with UTF-16 one
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// selectReader returns reader producing UTF-8 with BOM removed.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	// this should never happen
	panic(fmt.Sprintf("unexpected source encoding %d", enc))
}

var charsetRule = regexp.MustCompile(`^@charset\s+["']([^"']+)["']\s*;`)

// decodeSource reads stylesheet converting it to UTF-8. Sources with BOM are
// always decoded accordingly, otherwise forced encoding is used if specified
// and @charset rule is honored if not.
func decodeSource(r io.Reader, enc srcEncoding, forced encoding.Encoding, log *zap.Logger) ([]byte, error) {
	data, err := io.ReadAll(selectReader(r, enc))
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}
	if enc != encUnknown {
		return data, nil
	}

	cs := forced
	if cs == nil {
		if m := charsetRule.FindSubmatch(data); m != nil {
			e, name := charset.Lookup(string(m[1]))
			switch {
			case e == nil:
				log.Warn("Unknown @charset, assuming UTF-8", zap.ByteString("charset", m[1]))
			case name != "utf-8":
				log.Debug("Decoding source", zap.String("charset", name))
				cs = e
			}
		}
	}
	if cs == nil {
		if !utf8.Valid(data) {
			log.Warn("Source is not valid UTF-8, consider specifying its encoding")
		}
		return data, nil
	}

	out, _, err := transform.Bytes(cs.NewDecoder(), data)
	if err != nil {
		n, _ := ianaindex.IANA.Name(cs)
		return nil, fmt.Errorf("unable to decode source from %s: %w", n, err)
	}
	return out, nil
}
