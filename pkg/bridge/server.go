package bridge

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/uptime-industries/pmic-agent/pkg/bridge/proto"
)

// Registers is the byte register access the bridge forwards commands to.
type Registers interface {
	ReadRegister(addr, reg uint8) (byte, error)
	WriteRegister(addr, reg, val uint8) error
}

// Server answers register commands arriving on a serial line. It runs on the
// bridge side, either on the microcontroller or in tests.
type Server struct {
	Bus Registers

	rw io.ReadWriter
	mu sync.Mutex
}

func NewServer(rw io.ReadWriter, bus Registers) *Server {
	return &Server{Bus: bus, rw: rw}
}

// Serve reads commands until ctx is done or the line fails. Corrupted frames
// and unknown commands are dropped without a reply.
func (s *Server) Serve(ctx context.Context) error {
	for {
		pkt, err := proto.ReadPacket(ctx, s.rw)
		if errors.Is(err, proto.ErrChecksumMismatch) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		reply, ok := s.Handle(pkt)
		if !ok {
			continue
		}
		if err := s.write(ctx, reply); err != nil {
			return err
		}
	}
}

// Handle executes a single command and returns the reply to send back.
func (s *Server) Handle(pkt proto.Packet) (proto.Packet, bool) {
	switch pkt.Command {
	case CmdReadRegister:
		var cmd ReadRegisterPacket
		_ = cmd.FromPacket(pkt)
		val, err := s.Bus.ReadRegister(cmd.Addr, cmd.Reg)
		if err != nil {
			return (&BusErrorPacket{Addr: cmd.Addr, Reg: cmd.Reg, Cmd: pkt.Command}).Packet(), true
		}
		return (&RegisterValuePacket{Addr: cmd.Addr, Reg: cmd.Reg, Value: val}).Packet(), true

	case CmdWriteRegister:
		var cmd WriteRegisterPacket
		_ = cmd.FromPacket(pkt)
		if err := s.Bus.WriteRegister(cmd.Addr, cmd.Reg, cmd.Value); err != nil {
			return (&BusErrorPacket{Addr: cmd.Addr, Reg: cmd.Reg, Cmd: pkt.Command}).Packet(), true
		}
		return (&WriteAckPacket{Addr: cmd.Addr, Reg: cmd.Reg}).Packet(), true
	}
	return proto.Packet{}, false
}

// NotifyInterrupt forwards a charger interrupt to the agent.
func (s *Server) NotifyInterrupt(ctx context.Context) error {
	return s.write(ctx, (&InterruptPacket{}).Packet())
}

func (s *Server) write(ctx context.Context, pkt proto.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return proto.WritePacket(ctx, s.rw, pkt)
}
