// Package proto implements the framing used between the agent and the serial
// I2C bridge.
//
// Every packet carries one command byte and three data bytes followed by an
// XOR checksum. Packets are framed by SOF/EOF, payload bytes colliding with a
// framing byte are escaped with ESC and XORed with 0x20.
package proto

import (
	"context"
	"errors"
	"io"
)

var ErrChecksumMismatch = errors.New("checksum mismatch")

const (
	SOF = 0x7E // Start of Frame
	ESC = 0x7D // Escape character
	XOR = 0x20 // XOR value for escaping
	EOF = 0x7F // End of Frame

	// payloadLen is command + 3 data bytes + checksum
	payloadLen = 5
	// maxFrameLen is a fully escaped payload plus SOF and EOF
	maxFrameLen = 2*payloadLen + 2
)

// Command represents the command byte.
type Command uint8

// Data represents the three data bytes.
type Data [3]uint8

// Packet is one command with its data.
type Packet struct {
	Command Command
	Data    Data
}

// Checksum is the XOR over command and data.
func (p Packet) Checksum() uint8 {
	crc := uint8(p.Command)
	for _, d := range p.Data {
		crc ^= d
	}
	return crc
}

func needsEscape(b uint8) bool {
	return b == SOF || b == EOF || b == ESC
}

// AppendFrame appends the framed and escaped packet to buf.
func AppendFrame(buf []byte, p Packet) []byte {
	payload := [payloadLen]uint8{uint8(p.Command), p.Data[0], p.Data[1], p.Data[2], p.Checksum()}
	buf = append(buf, SOF)
	for _, b := range payload {
		if needsEscape(b) {
			buf = append(buf, ESC, b^XOR)
			continue
		}
		buf = append(buf, b)
	}
	return append(buf, EOF)
}

// WritePacket writes one framed packet to w with a single Write call.
func WritePacket(_ context.Context, w io.Writer, p Packet) error {
	var buf [maxFrameLen]byte
	_, err := w.Write(AppendFrame(buf[:0], p))
	return err
}

// ReadPacket reads the next complete packet from r. Bytes outside a frame and
// frames of the wrong length are dropped. A frame with a bad checksum is
// consumed and reported as ErrChecksumMismatch.
func ReadPacket(ctx context.Context, r io.Reader) (Packet, error) {
	var (
		payload [payloadLen]uint8
		n       int
		inFrame bool
		escaped bool
		b       [1]byte
	)

	for {
		if err := ctx.Err(); err != nil {
			return Packet{}, err
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return Packet{}, err
		}
		c := b[0]

		switch {
		case c == SOF:
			// a SOF always restarts framing, even inside a broken frame
			inFrame, n, escaped = true, 0, false
			continue
		case !inFrame:
			continue
		case escaped:
			c ^= XOR
			escaped = false
		case c == ESC:
			escaped = true
			continue
		case c == EOF:
			inFrame = false
			if n != payloadLen {
				continue
			}
			pkt := Packet{
				Command: Command(payload[0]),
				Data:    Data{payload[1], payload[2], payload[3]},
			}
			if pkt.Checksum() != payload[4] {
				return Packet{}, ErrChecksumMismatch
			}
			return pkt, nil
		}

		if n == payloadLen {
			// oversized frame, wait for the next SOF
			inFrame = false
			continue
		}
		payload[n] = c
		n++
	}
}
