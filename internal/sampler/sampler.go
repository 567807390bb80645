// Package sampler reads a bounded sample from a CSV file, detecting the
// file's encoding and delimiter along the way.
package sampler

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// detectionWindow is how many leading bytes are examined for encoding and
// delimiter detection.
const detectionWindow = 100 * 1024

// candidateDelimiters are tried in order; the first producing more than one
// column wins.
var candidateDelimiters = []rune{',', '\t', '|', ';'}

// Options control sampling. Zero values mean "detect or default".
type Options struct {
	// Rows is the maximum number of data rows to sample.
	// Defaults to csv2pg.DefaultSampleRows.
	Rows int

	// Encoding overrides encoding detection ("utf-8", "latin-1", ...).
	Encoding string

	// Delimiter overrides delimiter detection.
	Delimiter rune
}

// Sampler reads CSV samples. Safe for concurrent use.
type Sampler struct {
	logger csv2pg.Logger
}

// New creates a sampler.
func New(logger csv2pg.Logger) *Sampler {
	return &Sampler{logger: logger}
}

// Sample reads up to opts.Rows data rows from the CSV at path.
//
// The first record is taken as the header row. Blank cells become nil values
// so downstream null accounting stays faithful; short rows simply omit the
// missing trailing columns.
func (s *Sampler) Sample(path string, opts Options) (csv2pg.CSVSample, error) {
	head, err := readHead(path)
	if err != nil {
		return csv2pg.CSVSample{}, err
	}
	if len(head) == 0 {
		return csv2pg.CSVSample{}, fmt.Errorf("%w: %s", csv2pg.ErrEmptyCSV, path)
	}

	enc := opts.Encoding
	if enc == "" {
		enc = detectEncoding(head)
		s.logger.Verbose("detected encoding: %s", enc)
	}
	decoder, err := decoderFor(enc)
	if err != nil {
		return csv2pg.CSVSample{}, err
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = detectDelimiter(decodeBytes(head, decoder))
		s.logger.Verbose("detected delimiter: %q", delimiter)
	}

	f, err := os.Open(path)
	if err != nil {
		return csv2pg.CSVSample{}, wrapOpenError(path, err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(bufio.NewReader(f), decoder.NewDecoder()))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return csv2pg.CSVSample{}, fmt.Errorf("%w: %s", csv2pg.ErrEmptyCSV, path)
		}
		return csv2pg.CSVSample{}, fmt.Errorf("read CSV header: %w", err)
	}
	headers = trimBOMHeader(headers)

	maxRows := opts.Rows
	if maxRows <= 0 {
		maxRows = csv2pg.DefaultSampleRows
	}

	rows := make([]map[string]*string, 0, maxRows)
	for len(rows) < maxRows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed rows are skipped, not fatal. Sampling is
			// best-effort and the loader handles the full file later.
			s.logger.Verbose("skipping malformed row: %v", err)
			continue
		}

		row := make(map[string]*string, len(headers))
		for i, h := range headers {
			if i >= len(record) {
				break
			}
			cell := record[i]
			if strings.TrimSpace(cell) == "" {
				row[h] = nil
			} else {
				v := cell
				row[h] = &v
			}
		}
		rows = append(rows, row)
	}

	s.logger.Info("sampled %d rows, %d columns from %s", len(rows), len(headers), path)

	return csv2pg.CSVSample{
		Path: path,
		Properties: csv2pg.CSVProperties{
			Delimiter:   delimiter,
			Encoding:    enc,
			QuoteChar:   '"',
			HasHeader:   true,
			ColumnCount: len(headers),
		},
		Headers:    headers,
		Rows:       rows,
		SampleSize: len(rows),
	}, nil
}

// readHead returns up to detectionWindow leading bytes of the file.
func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpenError(path, err)
	}
	defer f.Close()

	head := make([]byte, detectionWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return head[:n], nil
}

func wrapOpenError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", csv2pg.ErrCSVNotFound, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// detectEncoding inspects the byte-order mark, then falls back to UTF-8
// validity: well-formed input is UTF-8, anything else is treated as latin-1,
// which decodes every byte sequence.
func detectEncoding(head []byte) string {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return "utf-8-sig"
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return "utf-16be"
	}

	if isValidUTF8(head) {
		return "utf-8"
	}
	return "latin-1"
}

// isValidUTF8 tolerates a multi-byte rune cut off by the detection window:
// up to three trailing bytes are dropped before giving up.
func isValidUTF8(b []byte) bool {
	for i := 0; i < 3 && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// decoderFor maps an encoding name to its decoder.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-8-sig":
		return unicode.UTF8BOM, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q: %w", name, csv2pg.ErrInvalidConfig)
}

func decodeBytes(b []byte, enc encoding.Encoding) string {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

// detectDelimiter parses the head with each candidate delimiter and picks
// the first one yielding more than one column on the first row.
func detectDelimiter(head string) rune {
	for _, delimiter := range candidateDelimiters {
		r := csv.NewReader(strings.NewReader(head))
		r.Comma = delimiter
		r.FieldsPerRecord = -1
		r.LazyQuotes = true

		record, err := r.Read()
		if err != nil {
			continue
		}
		if len(record) > 1 {
			return delimiter
		}
	}
	return ','
}

// trimBOMHeader strips a byte-order mark that survived decoding into the
// first header cell.
func trimBOMHeader(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers
}
