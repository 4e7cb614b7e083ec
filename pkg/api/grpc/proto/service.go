package proto

import (
	"context"

	"google.golang.org/grpc"
)

// KDEServer is the service every gRPC server implementation of the façade
// surface (pkg/api/grpc.Server) must satisfy, mirroring the method set a
// protoc-gen-go-grpc "UnimplementedKDEServer" would generate from a .proto
// service definition (see this package's doc comment for why there is no
// .proto file to generate from).
type KDEServer interface {
	CreateModel(context.Context, *CreateModelRequest) (*Empty, error)
	DeleteModel(context.Context, *DeleteModelRequest) (*Empty, error)
	ListModels(context.Context, *Empty) (*ListModelsResponse, error)

	SetData(context.Context, *SetDataRequest) (*Empty, error)
	SetKernel(context.Context, *SetKernelRequest) (*Empty, error)
	SetScale(context.Context, *SetScaleRequest) (*Empty, error)
	ScaleSilverman(context.Context, *ModelRequest) (*Empty, error)
	ScaleScott(context.Context, *ModelRequest) (*Empty, error)
	SetSpatial(context.Context, *SetSpatialRequest) (*Empty, error)
	SetBalls(context.Context, *SetBallsRequest) (*Empty, error)

	Prob(context.Context, *ProbRequest) (*ProbResponse, error)
	Mode(context.Context, *ModeRequest) (*PointResponse, error)
	Manifold(context.Context, *ManifoldRequest) (*PointResponse, error)
	Cluster(context.Context, *ModelRequest) (*ClusterResponse, error)
	AssignCluster(context.Context, *AssignRequest) (*AssignResponse, error)
	Draw(context.Context, *DrawRequest) (*PointResponse, error)
	Bootstrap(context.Context, *DrawRequest) (*PointResponse, error)
	Mult(context.Context, *MultRequest) (*PointResponse, error)
	Stats(context.Context, *ModelRequest) (*StatsResponse, error)
}

// KDEClient is the client stub a protoc-gen-go-grpc run would generate.
type KDEClient interface {
	CreateModel(ctx context.Context, in *CreateModelRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteModel(ctx context.Context, in *DeleteModelRequest, opts ...grpc.CallOption) (*Empty, error)
	ListModels(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListModelsResponse, error)

	SetData(ctx context.Context, in *SetDataRequest, opts ...grpc.CallOption) (*Empty, error)
	SetKernel(ctx context.Context, in *SetKernelRequest, opts ...grpc.CallOption) (*Empty, error)
	SetScale(ctx context.Context, in *SetScaleRequest, opts ...grpc.CallOption) (*Empty, error)
	ScaleSilverman(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*Empty, error)
	ScaleScott(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*Empty, error)
	SetSpatial(ctx context.Context, in *SetSpatialRequest, opts ...grpc.CallOption) (*Empty, error)
	SetBalls(ctx context.Context, in *SetBallsRequest, opts ...grpc.CallOption) (*Empty, error)

	Prob(ctx context.Context, in *ProbRequest, opts ...grpc.CallOption) (*ProbResponse, error)
	Mode(ctx context.Context, in *ModeRequest, opts ...grpc.CallOption) (*PointResponse, error)
	Manifold(ctx context.Context, in *ManifoldRequest, opts ...grpc.CallOption) (*PointResponse, error)
	Cluster(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*ClusterResponse, error)
	AssignCluster(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*AssignResponse, error)
	Draw(ctx context.Context, in *DrawRequest, opts ...grpc.CallOption) (*PointResponse, error)
	Bootstrap(ctx context.Context, in *DrawRequest, opts ...grpc.CallOption) (*PointResponse, error)
	Mult(ctx context.Context, in *MultRequest, opts ...grpc.CallOption) (*PointResponse, error)
	Stats(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*StatsResponse, error)
}

const serviceName = "kde.KDE"

type kdeClient struct {
	cc grpc.ClientConnInterface
}

// NewKDEClient wraps a *grpc.ClientConn (or any grpc.ClientConnInterface,
// e.g. for tests) as a KDEClient.
func NewKDEClient(cc grpc.ClientConnInterface) KDEClient {
	return &kdeClient{cc: cc}
}

func (c *kdeClient) call(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *kdeClient) CreateModel(ctx context.Context, in *CreateModelRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "CreateModel", in, out, opts...)
}
func (c *kdeClient) DeleteModel(ctx context.Context, in *DeleteModelRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "DeleteModel", in, out, opts...)
}
func (c *kdeClient) ListModels(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListModelsResponse, error) {
	out := new(ListModelsResponse)
	return out, c.call(ctx, "ListModels", in, out, opts...)
}
func (c *kdeClient) SetData(ctx context.Context, in *SetDataRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "SetData", in, out, opts...)
}
func (c *kdeClient) SetKernel(ctx context.Context, in *SetKernelRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "SetKernel", in, out, opts...)
}
func (c *kdeClient) SetScale(ctx context.Context, in *SetScaleRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "SetScale", in, out, opts...)
}
func (c *kdeClient) ScaleSilverman(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "ScaleSilverman", in, out, opts...)
}
func (c *kdeClient) ScaleScott(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "ScaleScott", in, out, opts...)
}
func (c *kdeClient) SetSpatial(ctx context.Context, in *SetSpatialRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "SetSpatial", in, out, opts...)
}
func (c *kdeClient) SetBalls(ctx context.Context, in *SetBallsRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.call(ctx, "SetBalls", in, out, opts...)
}
func (c *kdeClient) Prob(ctx context.Context, in *ProbRequest, opts ...grpc.CallOption) (*ProbResponse, error) {
	out := new(ProbResponse)
	return out, c.call(ctx, "Prob", in, out, opts...)
}
func (c *kdeClient) Mode(ctx context.Context, in *ModeRequest, opts ...grpc.CallOption) (*PointResponse, error) {
	out := new(PointResponse)
	return out, c.call(ctx, "Mode", in, out, opts...)
}
func (c *kdeClient) Manifold(ctx context.Context, in *ManifoldRequest, opts ...grpc.CallOption) (*PointResponse, error) {
	out := new(PointResponse)
	return out, c.call(ctx, "Manifold", in, out, opts...)
}
func (c *kdeClient) Cluster(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*ClusterResponse, error) {
	out := new(ClusterResponse)
	return out, c.call(ctx, "Cluster", in, out, opts...)
}
func (c *kdeClient) AssignCluster(ctx context.Context, in *AssignRequest, opts ...grpc.CallOption) (*AssignResponse, error) {
	out := new(AssignResponse)
	return out, c.call(ctx, "AssignCluster", in, out, opts...)
}
func (c *kdeClient) Draw(ctx context.Context, in *DrawRequest, opts ...grpc.CallOption) (*PointResponse, error) {
	out := new(PointResponse)
	return out, c.call(ctx, "Draw", in, out, opts...)
}
func (c *kdeClient) Bootstrap(ctx context.Context, in *DrawRequest, opts ...grpc.CallOption) (*PointResponse, error) {
	out := new(PointResponse)
	return out, c.call(ctx, "Bootstrap", in, out, opts...)
}
func (c *kdeClient) Mult(ctx context.Context, in *MultRequest, opts ...grpc.CallOption) (*PointResponse, error) {
	out := new(PointResponse)
	return out, c.call(ctx, "Mult", in, out, opts...)
}
func (c *kdeClient) Stats(ctx context.Context, in *ModelRequest, opts ...grpc.CallOption) (*StatsResponse, error) {
	out := new(StatsResponse)
	return out, c.call(ctx, "Stats", in, out, opts...)
}

// RegisterKDEServer registers srv's method set with s under this package's
// ServiceDesc, the hand-written equivalent of a generated RegisterKDEServer
// function.
func RegisterKDEServer(s grpc.ServiceRegistrar, srv KDEServer) {
	s.RegisterService(&_KDE_serviceDesc, srv)
}

func decodeAndCall(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor, fullMethod string, req interface{}, handler func(ctx context.Context, req interface{}) (interface{}, error)) (interface{}, error) {
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	return interceptor(ctx, req, info, handler)
}

func handlerFor(name string, newReq func() interface{}, call func(KDEServer, context.Context, interface{}) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			req := newReq()
			return decodeAndCall(srv, ctx, dec, interceptor, "/"+serviceName+"/"+name, req, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(KDEServer), ctx, req)
			})
		},
	}
}

var _KDE_serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*KDEServer)(nil),
	Methods: []grpc.MethodDesc{
		handlerFor("CreateModel", func() interface{} { return new(CreateModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.CreateModel(ctx, r.(*CreateModelRequest))
		}),
		handlerFor("DeleteModel", func() interface{} { return new(DeleteModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.DeleteModel(ctx, r.(*DeleteModelRequest))
		}),
		handlerFor("ListModels", func() interface{} { return new(Empty) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.ListModels(ctx, r.(*Empty))
		}),
		handlerFor("SetData", func() interface{} { return new(SetDataRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.SetData(ctx, r.(*SetDataRequest))
		}),
		handlerFor("SetKernel", func() interface{} { return new(SetKernelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.SetKernel(ctx, r.(*SetKernelRequest))
		}),
		handlerFor("SetScale", func() interface{} { return new(SetScaleRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.SetScale(ctx, r.(*SetScaleRequest))
		}),
		handlerFor("ScaleSilverman", func() interface{} { return new(ModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.ScaleSilverman(ctx, r.(*ModelRequest))
		}),
		handlerFor("ScaleScott", func() interface{} { return new(ModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.ScaleScott(ctx, r.(*ModelRequest))
		}),
		handlerFor("SetSpatial", func() interface{} { return new(SetSpatialRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.SetSpatial(ctx, r.(*SetSpatialRequest))
		}),
		handlerFor("SetBalls", func() interface{} { return new(SetBallsRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.SetBalls(ctx, r.(*SetBallsRequest))
		}),
		handlerFor("Prob", func() interface{} { return new(ProbRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Prob(ctx, r.(*ProbRequest))
		}),
		handlerFor("Mode", func() interface{} { return new(ModeRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Mode(ctx, r.(*ModeRequest))
		}),
		handlerFor("Manifold", func() interface{} { return new(ManifoldRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Manifold(ctx, r.(*ManifoldRequest))
		}),
		handlerFor("Cluster", func() interface{} { return new(ModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Cluster(ctx, r.(*ModelRequest))
		}),
		handlerFor("AssignCluster", func() interface{} { return new(AssignRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.AssignCluster(ctx, r.(*AssignRequest))
		}),
		handlerFor("Draw", func() interface{} { return new(DrawRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Draw(ctx, r.(*DrawRequest))
		}),
		handlerFor("Bootstrap", func() interface{} { return new(DrawRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Bootstrap(ctx, r.(*DrawRequest))
		}),
		handlerFor("Mult", func() interface{} { return new(MultRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Mult(ctx, r.(*MultRequest))
		}),
		handlerFor("Stats", func() interface{} { return new(ModelRequest) }, func(s KDEServer, ctx context.Context, r interface{}) (interface{}, error) {
			return s.Stats(ctx, r.(*ModelRequest))
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pkg/api/grpc/proto/kde.proto",
}
