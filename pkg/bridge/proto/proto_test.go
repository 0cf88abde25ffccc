package proto_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptime-industries/pmic-agent/pkg/bridge/proto"
)

func TestWritePacket(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		packet   proto.Packet
		expected []uint8
	}{
		{
			name: "Register read",
			packet: proto.Packet{
				Command: proto.Command(0x10),
				Data:    proto.Data{0x6b, 0x0c, 0x00},
			},
			expected: []uint8{proto.SOF, 0x10, 0x6b, 0x0c, 0x00, 0x77, proto.EOF},
		},
		{
			name: "ESC in payload and checksum == ESC",
			packet: proto.Packet{
				Command: proto.Command(0x01),
				Data:    proto.Data{proto.ESC, 0x12, 0x13},
			},
			expected: []uint8{
				proto.SOF,
				0x01,
				proto.ESC, proto.XOR ^ proto.ESC,
				0x12, 0x13,
				// checksum 0x7d
				proto.ESC, proto.XOR ^ proto.ESC,
				proto.EOF,
			},
		},
		{
			name: "EOF, SOF and ESC in payload",
			packet: proto.Packet{
				Command: proto.Command(0xff),
				Data:    proto.Data{proto.SOF, proto.EOF, proto.ESC},
			},
			expected: []uint8{
				proto.SOF,
				0xff,
				proto.ESC, proto.XOR ^ proto.SOF,
				proto.ESC, proto.XOR ^ proto.EOF,
				proto.ESC, proto.XOR ^ proto.ESC,
				0x83,
				proto.EOF,
			},
		},
	}

	for _, tcl := range testcases {
		tc := tcl
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buffer bytes.Buffer
			err := proto.WritePacket(context.TODO(), &buffer, tc.packet)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, buffer.Bytes())
		})
	}
}

func FuzzPacketReadWrite(f *testing.F) {
	f.Add(uint8(0x10), uint8(0x6b), uint8(0x0c), uint8(0x00))
	f.Add(uint8(proto.SOF), uint8(proto.EOF), uint8(proto.ESC), uint8(proto.XOR))

	f.Fuzz(func(t *testing.T, cmd, d0, d1, d2 uint8) {
		pkt := proto.Packet{
			Command: proto.Command(cmd),
			Data:    proto.Data{d0, d1, d2},
		}

		var buffer bytes.Buffer
		err := proto.WritePacket(context.TODO(), &buffer, pkt)
		assert.NoError(t, err)

		readPkt, err := proto.ReadPacket(context.TODO(), &buffer)
		assert.NoError(t, err)
		assert.Equal(t, pkt, readPkt)
	})
}

func TestReadPacketChecksumError(t *testing.T) {
	buffer := bytes.NewBuffer([]uint8{proto.SOF, 0x10, 0x11, 0x22, 0x33, 0x00, proto.EOF})

	_, err := proto.ReadPacket(context.TODO(), buffer)
	assert.ErrorIs(t, err, proto.ErrChecksumMismatch)
}

func TestReadPacketDirtyReader(t *testing.T) {
	buffer := bytes.NewBuffer([]uint8{
		// tail of a previous packet
		0x12, 0x13, 0x11, proto.EOF,
		// frame cut short by a new SOF
		proto.SOF, 0x01, 0x02,
		// actual packet
		proto.SOF, 0x01, 0x11, 0x12, 0x13, 0x11, proto.EOF,
	})

	pkt, err := proto.ReadPacket(context.TODO(), buffer)
	require.NoError(t, err)
	assert.Equal(t, proto.Packet{Command: proto.Command(0x01), Data: proto.Data{0x11, 0x12, 0x13}}, pkt)
}

func TestReadPacketSkipsOversizedFrame(t *testing.T) {
	buffer := bytes.NewBuffer([]uint8{
		proto.SOF, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, proto.EOF,
		proto.SOF, 0x01, 0x11, 0x12, 0x13, 0x11, proto.EOF,
	})

	pkt, err := proto.ReadPacket(context.TODO(), buffer)
	require.NoError(t, err)
	assert.Equal(t, proto.Command(0x01), pkt.Command)
}

func TestReadPacketCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := proto.ReadPacket(ctx, bytes.NewBuffer([]uint8{proto.SOF}))
	assert.ErrorIs(t, err, context.Canceled)
}
