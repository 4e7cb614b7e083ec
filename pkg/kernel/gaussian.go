package kernel

import (
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

type gaussianKernel struct{}

func (gaussianKernel) Name() string        { return "gaussian" }
func (gaussianKernel) Description() string { return "Isotropic Gaussian kernel, infinite support." }
func (gaussianKernel) ConfigTemplate() (string, bool) { return "", false }

func (gaussianKernel) VerifyConfig(dims int, params string) error {
	if params != "" {
		return kerr.New(kerr.ConfigError, "gaussian kernel takes no parameters, got %q", params)
	}
	if dims <= 0 {
		return kerr.New(kerr.ConfigError, "dims must be positive, got %d", dims)
	}
	return nil
}

func (k gaussianKernel) NewConfig(dims int, params string) (*Config, error) {
	if err := k.VerifyConfig(dims, params); err != nil {
		return nil, err
	}
	return newConfig(k.Name(), dims, nil), nil
}

func (gaussianKernel) Range(cfg *Config) float64 { return math.Inf(1) }

func (gaussianKernel) weightRadial(r float64) float64 {
	return math.Exp(-0.5 * r * r)
}

func (k gaussianKernel) EffectiveRange(cfg *Config, quality float64) float64 {
	if quality >= 1 {
		return math.Inf(1)
	}
	total := k.Norm(cfg)
	return quantileRadius(k.weightRadial, cfg.Dims, total, quality)
}

func (k gaussianKernel) Weight(cfg *Config, delta []float64) float64 {
	return k.weightRadial(math.Sqrt(normSq(delta)))
}

func (gaussianKernel) Norm(cfg *Config) float64 {
	return math.Pow(2*math.Pi, float64(cfg.Dims)/2)
}

func (k gaussianKernel) Draw(cfg *Config, src *rng.Source, out []float64) {
	for i := range out {
		out[i] = src.Normal()
	}
}

func (gaussianKernel) Offset(cfg *Config, center, target []float64) {}
