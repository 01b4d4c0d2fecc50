package broadcast

import (
	"fmt"
	"time"
)

// FormatStatusLine renders a comma-separated textual status line for a
// single filter tick, terminated CRLF, with the total line length written
// as a zero-padded three-digit decimal into bytes 8-10 of the "status:   ,"
// header.
func FormatStatusLine(ts int64, roll, pitch, yaw, velN, velE, velD, posN, posE, posD float64, healthMask uint32) []byte {
	timeStr := time.UnixMilli(ts).Format("20060102150405.000")

	body := fmt.Sprintf("status:   ,%s,%.3f,%.3f,%.3f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%08X\r\n",
		timeStr, roll, pitch, yaw, velN, velE, velD, posN, posE, posD, healthMask)

	b := []byte(body)
	nLen := len(b)
	b[8] = byte('0' + ((nLen / 100) % 10))
	b[9] = byte('0' + ((nLen / 10) % 10))
	b[10] = byte('0' + (nLen % 10))
	return b
}
