package sensor

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Wire format of the UART thermal bridge: each frame is
//
//	0x5A 0x5A | width*height little-endian int16 centi-degrees | uint16 checksum
//
// where the checksum is the additive sum of all payload bytes, little-endian.
const (
	frameHeaderByte = 0x5A
	headerLen       = 2
)

var ErrBadChecksum = errors.New("sensor: frame checksum mismatch")

// EncodeFrame serialises a temperature frame into the bridge wire format.
// Temperatures outside the int16 centi-degree range are clamped.
func EncodeFrame(frame []float64) []byte {
	buf := make([]byte, headerLen+len(frame)*2+2)
	buf[0] = frameHeaderByte
	buf[1] = frameHeaderByte

	for i, v := range frame {
		c := v * 100
		if c > 32767 {
			c = 32767
		}
		if c < -32768 {
			c = -32768
		}
		binary.LittleEndian.PutUint16(buf[headerLen+i*2:], uint16(int16(c)))
	}

	payload := buf[headerLen : headerLen+len(frame)*2]
	binary.LittleEndian.PutUint16(buf[len(buf)-2:], checksum(payload))
	return buf
}

// readFrame scans the stream for a frame header and decodes one frame of
// count temperatures.
func readFrame(r *bufio.Reader, count int) ([]float64, error) {
	// Resynchronise on the two-byte header so a partial frame on the wire
	// only costs us one frame, not the connection.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != frameHeaderByte {
			continue
		}
		next, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if next == frameHeaderByte {
			break
		}
	}

	payload := make([]byte, count*2)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("sensor: read frame payload: %w", err)
	}
	var sum [2]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, fmt.Errorf("sensor: read frame checksum: %w", err)
	}
	if binary.LittleEndian.Uint16(sum[:]) != checksum(payload) {
		return nil, ErrBadChecksum
	}

	frame := make([]float64, count)
	for i := range frame {
		frame[i] = float64(int16(binary.LittleEndian.Uint16(payload[i*2:]))) / 100
	}
	return frame, nil
}

func checksum(payload []byte) uint16 {
	var sum uint16
	for _, b := range payload {
		sum += uint16(b)
	}
	return sum
}
