//go:build !tinygo

package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/uptime-industries/pmic-agent/pkg/bridge"
	"github.com/uptime-industries/pmic-agent/pkg/bridge/proto"
	"github.com/uptime-industries/pmic-agent/pkg/eventbus"
	"github.com/uptime-industries/pmic-agent/pkg/log"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

var (
	ErrBridgeTimeout = errors.New("bridge did not reply in time")
	ErrBridgeBus     = errors.New("bridge reported an i2c error")
)

const (
	inboundTopic = "bridge:inbound"

	DefaultSerialTimeout = 250 * time.Millisecond
)

// Serial talks to a microcontroller forwarding register commands to the
// charger. Run must be active for any register access to complete.
type Serial struct {
	rwc     io.ReadWriteCloser
	timeout time.Duration
	eb      eventbus.EventBus

	// one outstanding transaction at a time
	mu sync.Mutex

	// interrupts holds at most one interrupt reported while nobody waited
	interrupts eventbus.Subscriber
}

// OpenSerial opens the serial port of a bridge, a zero timeout selects
// DefaultSerialTimeout.
func OpenSerial(portName string, timeout time.Duration) (*Serial, error) {
	rwc, err := serial.Open(portName, &serial.Mode{
		BaudRate: bridge.Baudrate,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", portName, err)
	}
	return NewSerial(rwc, timeout), nil
}

func NewSerial(rwc io.ReadWriteCloser, timeout time.Duration) *Serial {
	if timeout <= 0 {
		timeout = DefaultSerialTimeout
	}
	eb := eventbus.New()
	return &Serial{
		rwc:        rwc,
		timeout:    timeout,
		eb:         eb,
		interrupts: eb.Subscribe(inboundTopic, 1, bridge.MatchCmd(bridge.NotifyInterrupt)),
	}
}

// Run reads packets from the bridge until ctx is done or the port fails.
func (s *Serial) Run(ctx context.Context) error {
	for {
		pkt, err := proto.ReadPacket(ctx, s.rwc)
		if errors.Is(err, proto.ErrChecksumMismatch) {
			log.FromContext(ctx).Warn("Dropping corrupted packet from bridge")
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read from bridge: %w", err)
		}
		if n := s.eb.Publish(inboundTopic, pkt); n == 0 {
			log.FromContext(ctx).Debug("Unsolicited packet from bridge", zap.Uint8("command", uint8(pkt.Command)))
		}
	}
}

func (s *Serial) ReadRegister(addr, reg uint8) (byte, error) {
	pkt, err := s.transact(&bridge.ReadRegisterPacket{Addr: addr, Reg: reg}, addr, reg)
	if err != nil {
		return 0, err
	}
	var resp bridge.RegisterValuePacket
	if err := resp.FromPacket(pkt); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

func (s *Serial) WriteRegister(addr, reg, val uint8) error {
	pkt, err := s.transact(&bridge.WriteRegisterPacket{Addr: addr, Reg: reg, Value: val}, addr, reg)
	if err != nil {
		return err
	}
	var ack bridge.WriteAckPacket
	return ack.FromPacket(pkt)
}

func (s *Serial) transact(req bridge.PacketGenerator, addr, reg uint8) (proto.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// subscribe before writing so a fast reply is not missed
	sub := s.eb.Subscribe(inboundTopic, 1, bridge.MatchReply(addr, reg))
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := proto.WritePacket(ctx, s.rwc, req.Packet()); err != nil {
		return proto.Packet{}, fmt.Errorf("write to bridge: %w", err)
	}

	select {
	case <-ctx.Done():
		return proto.Packet{}, ErrBridgeTimeout
	case pktAny := <-sub.C():
		pkt := pktAny.(proto.Packet)
		if pkt.Command == bridge.RespBusError {
			return proto.Packet{}, ErrBridgeBus
		}
		return pkt, nil
	}
}

// WaitForInterrupt blocks until the bridge reports a falling edge on the
// charger INT line. An edge reported since the last call returns at once,
// further ones are folded into it.
func (s *Serial) WaitForInterrupt(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.interrupts.C():
		return nil
	}
}

func (s *Serial) Close() error {
	s.interrupts.Unsubscribe()
	return s.rwc.Close()
}
