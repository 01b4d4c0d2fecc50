// Command ekfreplay is the offline companion to ekfd: it can replay a
// captured stream of wireproto packets to a UDP destination at a timed
// rate, or convert a flight log's recorded ticks to CSV and compare its
// horizontal track against a reference CSV. Neither mode runs a filter.
package main

import (
	"encoding/binary"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"strconv"
	"time"

	"flightekf/flightlog"
)

func main() {
	mode := flag.String("mode", "replay", "replay (send a captured wireproto stream over UDP) or analyze (convert a flight log to CSV)")
	capturePath := flag.String("capture", "", "Input capture file (length-prefixed wireproto packets, timed mode)")
	destAddr := flag.String("dest", "127.0.0.1:45500", "Destination UDP address for replay mode")
	speed := flag.Float64("speed", 1.0, "Replay speed multiplier (0 for max speed)")
	logPath := flag.String("log", "", "Input flight log path for analyze mode")
	outPath := flag.String("out", "replay.csv", "Output CSV path for analyze mode")
	refPath := flag.String("ref", "", "Optional reference CSV for RMSE comparison")
	maxShift := flag.Int("max-shift", 200, "Max frame shift searched for RMSE alignment")
	flag.Parse()

	switch *mode {
	case "replay":
		if *capturePath == "" {
			fmt.Println("--capture required in replay mode")
			os.Exit(1)
		}
		if err := runReplay(*capturePath, *destAddr, *speed); err != nil {
			fmt.Printf("replay failed: %v\n", err)
			os.Exit(1)
		}
	case "analyze":
		if *logPath == "" {
			fmt.Println("--log required in analyze mode")
			os.Exit(1)
		}
		if err := runAnalyze(*logPath, *outPath); err != nil {
			fmt.Printf("analyze failed: %v\n", err)
			os.Exit(1)
		}
		if *refPath != "" {
			rmse, shift, err := compareWithRef(*outPath, *refPath, *maxShift)
			if err != nil {
				fmt.Printf("rmse compare failed: %v\n", err)
			} else {
				fmt.Printf("ref shift %d frames, RMSE %.4f m\n", shift, rmse)
			}
		}
	default:
		fmt.Printf("unknown --mode %q\n", *mode)
		os.Exit(1)
	}
}

// runReplay sends a capture file of length-prefixed wireproto packets
// (each record: uint32 millisecond timestamp, uint32 packet length, packet
// bytes) to dest, pacing transmission to match the recorded timestamps.
func runReplay(capturePath, dest string, speed float64) error {
	raddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return fmt.Errorf("invalid dest address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	f, err := os.Open(capturePath)
	if err != nil {
		return fmt.Errorf("open capture failed: %w", err)
	}
	defer f.Close()

	var firstTsMs uint32
	var haveFirst bool
	var startReal time.Time
	count := 0

	recHdr := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, recHdr); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read record header: %w", err)
		}
		tsMs := binary.LittleEndian.Uint32(recHdr[0:4])
		pktLen := binary.LittleEndian.Uint32(recHdr[4:8])

		pkt := make([]byte, pktLen)
		if _, err := io.ReadFull(f, pkt); err != nil {
			return fmt.Errorf("read packet body: %w", err)
		}

		if !haveFirst {
			firstTsMs = tsMs
			startReal = time.Now()
			haveFirst = true
		} else if speed > 0 {
			targetDelay := time.Duration(float64(tsMs-firstTsMs) / speed * float64(time.Millisecond))
			elapsed := time.Since(startReal)
			if targetDelay > elapsed {
				time.Sleep(targetDelay - elapsed)
			}
		}

		if _, err := conn.Write(pkt); err != nil {
			fmt.Printf("write error: %v\n", err)
		}
		count++
		if count%1000 == 0 {
			fmt.Printf("\rsent %d packets...", count)
		}
	}
	fmt.Printf("\ndone, sent %d packets\n", count)
	return nil
}

// runAnalyze converts a flight log into a CSV of timestamp, NED velocity,
// NED position, and health-flag columns for external plotting or RMSE
// comparison.
func runAnalyze(logPath, outPath string) error {
	r, err := flightlog.NewReader(logPath)
	if err != nil {
		return fmt.Errorf("open flight log: %w", err)
	}
	defer r.Close()

	rows := [][]string{{"ts_ms", "vel_n", "vel_e", "vel_d", "pos_n", "pos_e", "pos_d", "flags"}}
	for {
		tick, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tick: %w", err)
		}
		rows = append(rows, []string{
			strconv.FormatInt(tick.TimestampMs, 10),
			fmt.Sprintf("%.4f", tick.States[4]),
			fmt.Sprintf("%.4f", tick.States[5]),
			fmt.Sprintf("%.4f", tick.States[6]),
			fmt.Sprintf("%.4f", tick.States[7]),
			fmt.Sprintf("%.4f", tick.States[8]),
			fmt.Sprintf("%.4f", tick.States[9]),
			strconv.Itoa(int(tick.Flags)),
		})
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output csv: %w", err)
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	fmt.Printf("wrote %d rows to %s\n", len(rows)-1, outPath)
	return w.Error()
}

func compareWithRef(predPath, refPath string, maxShift int) (float64, int, error) {
	pred, err := readXY(predPath, "pos_n", "pos_e")
	if err != nil {
		return 0, 0, err
	}
	ref, err := readXY(refPath, "pos_n", "pos_e")
	if err != nil {
		return 0, 0, err
	}

	bestShift := 0
	bestRmse := math.MaxFloat64
	for shift := -maxShift; shift <= maxShift; shift++ {
		var n int
		var sum float64
		if shift >= 0 {
			n = minInt(len(pred)-shift, len(ref))
			if n <= 0 {
				continue
			}
			for i := 0; i < n; i++ {
				dx := pred[i+shift][0] - ref[i][0]
				dy := pred[i+shift][1] - ref[i][1]
				sum += dx*dx + dy*dy
			}
		} else {
			s := -shift
			n = minInt(len(ref)-s, len(pred))
			if n <= 0 {
				continue
			}
			for i := 0; i < n; i++ {
				dx := pred[i][0] - ref[i+s][0]
				dy := pred[i][1] - ref[i+s][1]
				sum += dx*dx + dy*dy
			}
		}
		rmse := math.Sqrt(sum / float64(n))
		if rmse < bestRmse {
			bestRmse = rmse
			bestShift = shift
		}
	}
	return bestRmse, bestShift, nil
}

func readXY(path, colX, colY string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) <= 1 {
		return nil, fmt.Errorf("no rows in %s", path)
	}
	header := recs[0]
	idxX, idxY := indexOf(header, colX), indexOf(header, colY)
	if idxX < 0 || idxY < 0 {
		return nil, fmt.Errorf("columns %s/%s not found in %s", colX, colY, path)
	}
	out := make([][2]float64, 0, len(recs)-1)
	for _, row := range recs[1:] {
		if len(row) <= idxX || len(row) <= idxY {
			continue
		}
		x, _ := strconv.ParseFloat(row[idxX], 64)
		y, _ := strconv.ParseFloat(row[idxY], 64)
		out = append(out, [2]float64{x, y})
	}
	return out, nil
}

func indexOf(arr []string, key string) int {
	for i, v := range arr {
		if v == key {
			return i
		}
	}
	return -1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
