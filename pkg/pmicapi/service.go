// Package pmicapi is the gRPC surface of the charger agent. Messages are
// protobuf well-known types, so no generated code is needed.
package pmicapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "pmic.v1alpha1.ChargerService"

// ChargerServiceServer is implemented by the agent.
type ChargerServiceServer interface {
	// GetStatus returns the latest telemetry snapshot.
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// GetFaults reads the fault register.
	GetFaults(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// SetChargeCurrent sets the fast-charge current in mA and returns the
	// applied value. It overrides temperature derating.
	SetChargeCurrent(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error)
	SetChargeVoltage(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error)
	SetInputCurrentLimit(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error)
	SetCharging(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error)
	// WaitForFaultClear blocks until no fault is latched.
	WaitForFaultClear(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// UnimplementedChargerServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedChargerServiceServer struct{}

func (UnimplementedChargerServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedChargerServiceServer) GetFaults(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetFaults not implemented")
}
func (UnimplementedChargerServiceServer) SetChargeCurrent(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetChargeCurrent not implemented")
}
func (UnimplementedChargerServiceServer) SetChargeVoltage(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetChargeVoltage not implemented")
}
func (UnimplementedChargerServiceServer) SetInputCurrentLimit(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetInputCurrentLimit not implemented")
}
func (UnimplementedChargerServiceServer) SetCharging(context.Context, *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetCharging not implemented")
}
func (UnimplementedChargerServiceServer) WaitForFaultClear(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WaitForFaultClear not implemented")
}

func RegisterChargerServiceServer(s grpc.ServiceRegistrar, srv ChargerServiceServer) {
	s.RegisterService(&ChargerServiceDesc, srv)
}

type unaryHandlerFunc = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

// unaryHandler decodes a *Req and dispatches it to call, honouring the
// server interceptor chain.
func unaryHandler[Req any](method string, call func(ChargerServiceServer, context.Context, *Req) (interface{}, error)) unaryHandlerFunc {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChargerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ChargerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ChargerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChargerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unaryHandler("GetStatus", func(s ChargerServiceServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
				return s.GetStatus(ctx, in)
			}),
		},
		{
			MethodName: "GetFaults",
			Handler: unaryHandler("GetFaults", func(s ChargerServiceServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
				return s.GetFaults(ctx, in)
			}),
		},
		{
			MethodName: "SetChargeCurrent",
			Handler: unaryHandler("SetChargeCurrent", func(s ChargerServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (interface{}, error) {
				return s.SetChargeCurrent(ctx, in)
			}),
		},
		{
			MethodName: "SetChargeVoltage",
			Handler: unaryHandler("SetChargeVoltage", func(s ChargerServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (interface{}, error) {
				return s.SetChargeVoltage(ctx, in)
			}),
		},
		{
			MethodName: "SetInputCurrentLimit",
			Handler: unaryHandler("SetInputCurrentLimit", func(s ChargerServiceServer, ctx context.Context, in *wrapperspb.UInt32Value) (interface{}, error) {
				return s.SetInputCurrentLimit(ctx, in)
			}),
		},
		{
			MethodName: "SetCharging",
			Handler: unaryHandler("SetCharging", func(s ChargerServiceServer, ctx context.Context, in *wrapperspb.BoolValue) (interface{}, error) {
				return s.SetCharging(ctx, in)
			}),
		},
		{
			MethodName: "WaitForFaultClear",
			Handler: unaryHandler("WaitForFaultClear", func(s ChargerServiceServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
				return s.WaitForFaultClear(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pmic/v1alpha1/charger.proto",
}
