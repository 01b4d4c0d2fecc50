package broadcast

import (
	"strconv"
	"strings"
	"testing"
)

func TestFormatStatusLineLengthPrefixMatchesBody(t *testing.T) {
	line := FormatStatusLine(1_700_000_000_000, 0.1, -0.2, 1.5, 1.0, 2.0, -3.0, 100.0, 200.0, -5.0, 0xA5)

	if !strings.HasSuffix(string(line), "\r\n") {
		t.Fatalf("expected CRLF terminator, got %q", line)
	}
	if !strings.HasPrefix(string(line), "status:") {
		t.Fatalf("expected status: prefix, got %q", line)
	}

	lenField := string(line[8:11])
	n, err := strconv.Atoi(lenField)
	if err != nil {
		t.Fatalf("length field %q not numeric: %v", lenField, err)
	}
	if n != len(line) {
		t.Fatalf("length field says %d, actual line length %d", n, len(line))
	}
}

func TestFormatStatusLineContainsHealthMaskHex(t *testing.T) {
	line := FormatStatusLine(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xDEADBEEF)
	if !strings.Contains(string(line), "DEADBEEF") {
		t.Fatalf("expected hex health mask in line, got %q", line)
	}
}
