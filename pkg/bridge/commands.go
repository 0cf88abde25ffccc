package bridge

import (
	"errors"

	"github.com/uptime-industries/pmic-agent/pkg/bridge/proto"
)

const (
	// Agent -> Bridge
	CmdReadRegister  proto.Command = 0x10
	CmdWriteRegister proto.Command = 0x11

	// Bridge -> Agent, replies to a register command
	RespRegisterValue proto.Command = 0x90
	RespWriteAck      proto.Command = 0x91
	RespBusError      proto.Command = 0x9e

	// Bridge -> Agent, sent when the charger pulls its INT line low
	NotifyInterrupt proto.Command = 0xa1
)

var ErrInvalidCommand = errors.New("invalid command")

type PacketGenerator interface {
	Packet() proto.Packet
}

// ReadRegisterPacket asks the bridge to read one register of a device.
type ReadRegisterPacket struct {
	Addr uint8
	Reg  uint8
}

func (p *ReadRegisterPacket) Packet() proto.Packet {
	return proto.Packet{
		Command: CmdReadRegister,
		Data:    proto.Data{p.Addr, p.Reg, 0},
	}
}

func (p *ReadRegisterPacket) FromPacket(packet proto.Packet) error {
	if packet.Command != CmdReadRegister {
		return ErrInvalidCommand
	}
	p.Addr, p.Reg = packet.Data[0], packet.Data[1]
	return nil
}

// WriteRegisterPacket asks the bridge to write one register of a device.
type WriteRegisterPacket struct {
	Addr  uint8
	Reg   uint8
	Value uint8
}

func (p *WriteRegisterPacket) Packet() proto.Packet {
	return proto.Packet{
		Command: CmdWriteRegister,
		Data:    proto.Data{p.Addr, p.Reg, p.Value},
	}
}

func (p *WriteRegisterPacket) FromPacket(packet proto.Packet) error {
	if packet.Command != CmdWriteRegister {
		return ErrInvalidCommand
	}
	p.Addr, p.Reg, p.Value = packet.Data[0], packet.Data[1], packet.Data[2]
	return nil
}

// RegisterValuePacket carries the result of a register read.
type RegisterValuePacket struct {
	Addr  uint8
	Reg   uint8
	Value uint8
}

func (p *RegisterValuePacket) Packet() proto.Packet {
	return proto.Packet{
		Command: RespRegisterValue,
		Data:    proto.Data{p.Addr, p.Reg, p.Value},
	}
}

func (p *RegisterValuePacket) FromPacket(packet proto.Packet) error {
	if packet.Command != RespRegisterValue {
		return ErrInvalidCommand
	}
	p.Addr, p.Reg, p.Value = packet.Data[0], packet.Data[1], packet.Data[2]
	return nil
}

// WriteAckPacket confirms a register write.
type WriteAckPacket struct {
	Addr uint8
	Reg  uint8
}

func (p *WriteAckPacket) Packet() proto.Packet {
	return proto.Packet{
		Command: RespWriteAck,
		Data:    proto.Data{p.Addr, p.Reg, 0},
	}
}

func (p *WriteAckPacket) FromPacket(packet proto.Packet) error {
	if packet.Command != RespWriteAck {
		return ErrInvalidCommand
	}
	p.Addr, p.Reg = packet.Data[0], packet.Data[1]
	return nil
}

// BusErrorPacket reports that the bridge could not complete a register
// command. Cmd is the command that failed.
type BusErrorPacket struct {
	Addr uint8
	Reg  uint8
	Cmd  proto.Command
}

func (p *BusErrorPacket) Packet() proto.Packet {
	return proto.Packet{
		Command: RespBusError,
		Data:    proto.Data{p.Addr, p.Reg, uint8(p.Cmd)},
	}
}

func (p *BusErrorPacket) FromPacket(packet proto.Packet) error {
	if packet.Command != RespBusError {
		return ErrInvalidCommand
	}
	p.Addr, p.Reg, p.Cmd = packet.Data[0], packet.Data[1], proto.Command(packet.Data[2])
	return nil
}

// InterruptPacket is sent by the bridge on every falling edge of the charger
// INT line.
type InterruptPacket struct{}

func (p *InterruptPacket) Packet() proto.Packet {
	return proto.Packet{
		Command: NotifyInterrupt,
		Data:    proto.Data{},
	}
}

func (p *InterruptPacket) FromPacket(packet proto.Packet) error {
	if packet.Command != NotifyInterrupt {
		return ErrInvalidCommand
	}
	return nil
}
