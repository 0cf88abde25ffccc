// Package bridge defines the register commands exchanged with a
// microcontroller that forwards I2C traffic over a serial line.
package bridge

import (
	"github.com/uptime-industries/pmic-agent/pkg/bridge/proto"
)

const (
	Baudrate = 115200
)

func MatchCmd(cmd proto.Command) func(any) bool {
	return func(pktAny any) bool {
		pkt, ok := pktAny.(proto.Packet)
		if !ok {
			return false
		}
		return pkt.Command == cmd
	}
}

// MatchReply matches any reply to a register command for addr/reg.
func MatchReply(addr, reg uint8) func(any) bool {
	return func(pktAny any) bool {
		pkt, ok := pktAny.(proto.Packet)
		if !ok {
			return false
		}
		switch pkt.Command {
		case RespRegisterValue, RespWriteAck, RespBusError:
			return pkt.Data[0] == addr && pkt.Data[1] == reg
		}
		return false
	}
}
