package monitor

import (
	"context"
	"errors"
	"math"

	"github.com/uptime-industries/pmic-agent/pkg/bq25896"
	"github.com/uptime-industries/pmic-agent/pkg/pmicapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// grpcService implements the ChargerService on top of a Monitor
type grpcService struct {
	pmicapi.UnimplementedChargerServiceServer

	Monitor *Monitor
}

// NewGrpcServiceFor creates a new gRPC service for a given monitor
func NewGrpcServiceFor(m *Monitor) pmicapi.ChargerServiceServer {
	return &grpcService{
		Monitor: m,
	}
}

func (service *grpcService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := service.Monitor.Snapshot(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(SnapshotFields(snap))
}

func (service *grpcService) GetFaults(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	fs, err := service.Monitor.FaultStatus(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(FaultFields(fs))
}

func (service *grpcService) SetChargeCurrent(ctx context.Context, req *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	applied, err := service.Monitor.SetChargeCurrent(ctx, toUint16(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt32(uint32(applied)), nil
}

func (service *grpcService) SetChargeVoltage(ctx context.Context, req *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	applied, err := service.Monitor.SetChargeVoltage(ctx, toUint16(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt32(uint32(applied)), nil
}

func (service *grpcService) SetInputCurrentLimit(ctx context.Context, req *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	applied, err := service.Monitor.SetInputCurrentLimit(ctx, toUint16(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.UInt32(uint32(applied)), nil
}

func (service *grpcService) SetCharging(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	if err := service.Monitor.SetCharging(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (service *grpcService) WaitForFaultClear(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := service.Monitor.WaitForFaultClear(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// SnapshotFields flattens a snapshot for the status response. The battery
// voltage and charge status are null while the NTC is abnormal.
func SnapshotFields(s bq25896.Snapshot) map[string]interface{} {
	var vbat, charge interface{}
	if s.VbatValid {
		vbat = int(s.Vbat_mV)
	}
	if s.ChargeValid {
		charge = s.Status.Charge.String()
	}
	return map[string]interface{}{
		"bus_status":        s.Status.Bus.String(),
		"charge_status":     charge,
		"power_good":        s.Status.PowerGood,
		"vsys_regulation":   s.Status.VsysRegulation,
		"vbus_mv":           int(s.Vbus_mV),
		"vsys_mv":           int(s.Vsys_mV),
		"vbat_mv":           vbat,
		"charge_current_ma": int(s.ChargeCurr_mA),
		"ts_percent":        float64(s.TS_mPct) / 1000,
		"fault":             FaultFields(s.Fault),
	}
}

func FaultFields(fs bq25896.FaultStatus) map[string]interface{} {
	faults := []interface{}{}
	for _, f := range fs.Faults() {
		faults = append(faults, f.String())
	}
	band := fs.NTCBand()
	return map[string]interface{}{
		"raw":          int(fs),
		"primary":      fs.Primary().String(),
		"faults":       faults,
		"charge_fault": fs.ChargeFault().String(),
		"ntc_status":   band.Name,
		"ntc_percent":  int(band.Percent),
	}
}

func toUint16(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

func toStatus(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	var tErr *bq25896.TransportError
	if errors.As(err, &tErr) {
		return status.Error(codes.Unavailable, err.Error())
	}
	if errors.Is(err, bq25896.ErrReadingUnavailable) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
