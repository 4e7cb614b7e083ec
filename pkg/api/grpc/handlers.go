package grpc

import (
	"context"
	"fmt"

	"github.com/arimanyus/meanshift/internal/rng"
	"github.com/arimanyus/meanshift/pkg/api/grpc/proto"
	"github.com/arimanyus/meanshift/pkg/balls"
	"github.com/arimanyus/meanshift/pkg/cachekv"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kde"
	"github.com/arimanyus/meanshift/pkg/registry"
	"github.com/arimanyus/meanshift/pkg/sampler"
	"github.com/arimanyus/meanshift/pkg/spatial"
)

// invalidate drops every memoized Prob/Mode/AssignCluster result for model,
// called by every setter that changes a façade's data, kernel, scale, or
// index configuration.
func (s *Server) invalidate(model string) {
	if s.cache != nil {
		s.cache.InvalidateModel(model)
	}
}

func toParams(p proto.Params) kde.Params {
	return kde.Params{
		Quality:        p.Quality,
		Epsilon:        p.Epsilon,
		IterCap:        p.IterCap,
		IdentDist:      p.IdentDist,
		MergeRange:     p.MergeRange,
		MergeCheckStep: p.MergeCheckStep,
	}
}

func toQuota(q proto.Quota) registry.Quota {
	return registry.Quota{
		MaxExemplars:  q.MaxExemplars,
		MaxDimensions: q.MaxDimensions,
		RateLimitQPS:  q.RateLimitQPS,
	}
}

func toRNGIndex(i proto.RNGIndex) rng.Index {
	return rng.Index{StreamHi: i.StreamHi, StreamLo: i.StreamLo, Sample: i.Sample, Inner: i.Inner}
}

// CreateModel registers a new named façade, filling in config defaults for a
// zero-valued Params/Quota.
func (s *Server) CreateModel(ctx context.Context, req *proto.CreateModelRequest) (*proto.Empty, error) {
	p := req.Params
	if p.Epsilon == 0 {
		p = proto.Params{
			Quality:        s.config.KDE.Quality,
			Epsilon:        s.config.KDE.Epsilon,
			IterCap:        s.config.KDE.IterCap,
			IdentDist:      s.config.KDE.IdentDist,
			MergeRange:     s.config.KDE.MergeRange,
			MergeCheckStep: s.config.KDE.MergeCheckStep,
		}
	}
	quota := toQuota(req.Quota)
	if quota == (registry.Quota{}) {
		quota = registry.DefaultQuota()
	}

	if _, err := s.registry.Create(req.Model, toParams(p), quota); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.UpdateModelCount(s.registry.Count())
	}
	return &proto.Empty{}, nil
}

// DeleteModel removes a named façade.
func (s *Server) DeleteModel(ctx context.Context, req *proto.DeleteModelRequest) (*proto.Empty, error) {
	if err := s.registry.Delete(req.Model); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	if s.metrics != nil {
		s.metrics.UpdateModelCount(s.registry.Count())
	}
	return &proto.Empty{}, nil
}

// ListModels enumerates every hosted model name.
func (s *Server) ListModels(ctx context.Context, _ *proto.Empty) (*proto.ListModelsResponse, error) {
	models := s.registry.List()
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return &proto.ListModelsResponse{Models: names}, nil
}

func (s *Server) model(name string) (*registry.Model, error) {
	return s.registry.Get(name)
}

// SetData installs req.Rows (with an optional weight column) as a model's
// backing array (spec §4.1).
func (s *Server) SetData(ctx context.Context, req *proto.SetDataRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	arr := datamatrix.NewDenseRows(req.Rows)
	tags := []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}
	err = m.Do(func(f *kde.Facade) error {
		return f.SetData(arr, tags, req.WeightColumn)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// SetKernel resolves and installs a (possibly parameterized) kernel name.
func (s *Server) SetKernel(ctx context.Context, req *proto.SetKernelRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.SetKernel(req.Kernel) }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// SetScale installs a new per-feature mult vector and weight_scale.
func (s *Server) SetScale(ctx context.Context, req *proto.SetScaleRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.SetScale(req.Mult, req.WeightScale) }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// ScaleSilverman applies Silverman's bandwidth rule of thumb.
func (s *Server) ScaleSilverman(ctx context.Context, req *proto.ModelRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.ScaleSilverman() }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// ScaleScott applies Scott's bandwidth rule.
func (s *Server) ScaleScott(ctx context.Context, req *proto.ModelRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.ScaleScott() }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// SetSpatial switches the spatial acceleration structure.
func (s *Server) SetSpatial(ctx context.Context, req *proto.SetSpatialRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.SetSpatial(spatial.Name(req.Spatial)) }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// SetBalls switches the balls-index implementation.
func (s *Server) SetBalls(ctx context.Context, req *proto.SetBallsRequest) (*proto.Empty, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	if err := m.Do(func(f *kde.Facade) error { return f.SetBalls(balls.Name(req.Balls)) }); err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	return &proto.Empty{}, nil
}

// Prob evaluates the KDE at req.Query.
func (s *Server) Prob(ctx context.Context, req *proto.ProbRequest) (*proto.ProbResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	var key cachekv.Key
	if s.cache != nil {
		key = cachekv.QueryKey(req.Model, "prob", req.Query)
		if v, ok := s.cache.Get(key); ok {
			return &proto.ProbResponse{Prob: v.(float64)}, nil
		}
	}

	var out float64
	err = m.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Prob(req.Query)
		return e
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(key, out)
	}
	if s.metrics != nil {
		s.metrics.RecordQuery(req.Model, "prob")
	}
	return &proto.ProbResponse{Prob: out}, nil
}

// Mode runs mean shift from req.Seed to convergence.
func (s *Server) Mode(ctx context.Context, req *proto.ModeRequest) (*proto.PointResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	var key cachekv.Key
	if s.cache != nil {
		key = cachekv.QueryKey(req.Model, "mode", req.Seed)
		if v, ok := s.cache.Get(key); ok {
			return &proto.PointResponse{Point: v.([]float64)}, nil
		}
	}

	var out []float64
	err = m.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Mode(req.Seed)
		return e
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(key, out)
	}
	if s.metrics != nil {
		s.metrics.RecordQuery(req.Model, "mode")
	}
	return &proto.PointResponse{Point: out}, nil
}

// Manifold runs subspace-constrained mean shift from req.Seed.
func (s *Server) Manifold(ctx context.Context, req *proto.ManifoldRequest) (*proto.PointResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	var out []float64
	err = m.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Manifold(req.Seed, req.Codim, req.AlwaysHessian)
		return e
	})
	if err != nil {
		return nil, err
	}
	return &proto.PointResponse{Point: out}, nil
}

// Cluster runs C6 from every exemplar and returns the discovered modes and
// per-exemplar assignment.
func (s *Server) Cluster(ctx context.Context, req *proto.ModelRequest) (*proto.ClusterResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	var result *proto.ClusterResponse
	err = m.Do(func(f *kde.Facade) error {
		r, e := f.Cluster()
		if e != nil {
			return e
		}
		result = &proto.ClusterResponse{Modes: r.Modes, Assignments: r.Assignments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(req.Model)
	if s.metrics != nil {
		s.metrics.RecordClusterModes(len(result.Modes))
	}
	return result, nil
}

// AssignCluster resolves req.Query against the balls index built by the
// model's most recent Cluster call.
func (s *Server) AssignCluster(ctx context.Context, req *proto.AssignRequest) (*proto.AssignResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	var key cachekv.Key
	if s.cache != nil {
		key = cachekv.QueryKey(req.Model, "assign", req.Query)
		if v, ok := s.cache.Get(key); ok {
			return v.(*proto.AssignResponse), nil
		}
	}

	var out proto.AssignResponse
	err = m.Do(func(f *kde.Facade) error {
		id, pos, e := f.AssignCluster(req.Query)
		if e != nil {
			return e
		}
		out = proto.AssignResponse{ClusterID: id, Mode: pos}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(key, &out)
	}
	return &out, nil
}

// Draw performs a weighted exemplar draw offset by a kernel sample.
func (s *Server) Draw(ctx context.Context, req *proto.DrawRequest) (*proto.PointResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	var out []float64
	err = m.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Draw(toRNGIndex(req.Index))
		return e
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSamplerDraw(req.Model, "draw")
	}
	return &proto.PointResponse{Point: out}, nil
}

// Bootstrap draws an exemplar with no kernel offset.
func (s *Server) Bootstrap(ctx context.Context, req *proto.DrawRequest) (*proto.PointResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	var out []float64
	err = m.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Bootstrap(toRNGIndex(req.Index))
		return e
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSamplerDraw(req.Model, "bootstrap")
	}
	return &proto.PointResponse{Point: out}, nil
}

// Mult draws from the product of req.Models' KDEs via Gibbs sampling.
// req.Models[0] is the primary model whose mutex serializes the call; the
// remaining models are read directly off the registry since the call only
// reads their kernel/data state, never mutates it.
func (s *Server) Mult(ctx context.Context, req *proto.MultRequest) (*proto.PointResponse, error) {
	if len(req.Models) == 0 {
		return nil, fmt.Errorf("mult requires at least one model")
	}
	primary, err := s.model(req.Models[0])
	if err != nil {
		return nil, err
	}
	others := make([]*kde.Facade, 0, len(req.Models)-1)
	for _, name := range req.Models[1:] {
		om, err := s.model(name)
		if err != nil {
			return nil, err
		}
		others = append(others, om.Facade)
	}

	p := sampler.ProductParams{Gibbs: req.Gibbs, MCI: req.MCI, MH: req.MH}
	var out []float64
	err = primary.Do(func(f *kde.Facade) error {
		var e error
		out, e = f.Mult(others, p, sampler.Fake(req.Fake), toRNGIndex(req.Index))
		return e
	})
	if err != nil {
		return nil, err
	}
	return &proto.PointResponse{Point: out}, nil
}

// Stats answers a model's weight()/exemplars()/features() accessors plus its
// currently configured kernel.
func (s *Server) Stats(ctx context.Context, req *proto.ModelRequest) (*proto.StatsResponse, error) {
	m, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}
	var out proto.StatsResponse
	err = m.Do(func(f *kde.Facade) error {
		w, e := f.Weight()
		if e != nil {
			return e
		}
		feats, e := f.Features()
		if e != nil {
			return e
		}
		out = proto.StatsResponse{
			Exemplars: f.Exemplars(),
			Features:  feats,
			Weight:    w,
			Kernel:    f.KernelName(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
