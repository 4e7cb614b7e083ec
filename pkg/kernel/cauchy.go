package kernel

import (
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

// cauchyKernel is the multivariate Cauchy/Student-t-style heavy-tailed
// kernel k(delta) = 1 / (1 + ||delta||^2)^((dims+1)/2).
type cauchyKernel struct{}

func (cauchyKernel) Name() string        { return "cauchy" }
func (cauchyKernel) Description() string { return "Heavy-tailed multivariate Cauchy kernel, infinite support." }
func (cauchyKernel) ConfigTemplate() (string, bool) { return "", false }

func (cauchyKernel) VerifyConfig(dims int, params string) error {
	if params != "" {
		return kerr.New(kerr.ConfigError, "cauchy kernel takes no parameters, got %q", params)
	}
	if dims <= 0 {
		return kerr.New(kerr.ConfigError, "dims must be positive, got %d", dims)
	}
	return nil
}

func (k cauchyKernel) NewConfig(dims int, params string) (*Config, error) {
	if err := k.VerifyConfig(dims, params); err != nil {
		return nil, err
	}
	return newConfig(k.Name(), dims, nil), nil
}

func (cauchyKernel) Range(cfg *Config) float64 { return math.Inf(1) }

func (k cauchyKernel) weightRadial(dims int) func(r float64) float64 {
	p := (float64(dims) + 1) / 2
	return func(r float64) float64 {
		return math.Pow(1+r*r, -p)
	}
}

func (k cauchyKernel) EffectiveRange(cfg *Config, quality float64) float64 {
	if quality >= 1 {
		return math.Inf(1)
	}
	total := k.Norm(cfg)
	return quantileRadius(k.weightRadial(cfg.Dims), cfg.Dims, total, quality)
}

func (k cauchyKernel) Weight(cfg *Config, delta []float64) float64 {
	return k.weightRadial(cfg.Dims)(math.Sqrt(normSq(delta)))
}

func (cauchyKernel) Norm(cfg *Config) float64 {
	d := float64(cfg.Dims)
	return math.Pow(math.Pi, (d+1)/2) / math.Gamma((d+1)/2)
}

func (k cauchyKernel) Draw(cfg *Config, src *rng.Source, out []float64) {
	// Multivariate Cauchy = isotropic Gaussian vector divided by the
	// magnitude of one independent standard normal (ratio-of-normals
	// construction), whose density is proportional to Weight.
	for i := 0; i < cfg.Dims; i++ {
		out[i] = src.Normal()
	}
	g := src.Normal()
	scale := math.Abs(g)
	if scale == 0 {
		scale = 1e-12
	}
	for i := range out {
		out[i] /= scale
	}
}

func (cauchyKernel) Offset(cfg *Config, center, target []float64) {}
