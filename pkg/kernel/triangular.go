package kernel

import (
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

type triangularKernel struct{}

func (triangularKernel) Name() string        { return "triangular" }
func (triangularKernel) Description() string { return "Linear falloff kernel, zero outside the unit ball." }
func (triangularKernel) ConfigTemplate() (string, bool) { return "", false }

func (triangularKernel) VerifyConfig(dims int, params string) error {
	if params != "" {
		return kerr.New(kerr.ConfigError, "triangular kernel takes no parameters, got %q", params)
	}
	if dims <= 0 {
		return kerr.New(kerr.ConfigError, "dims must be positive, got %d", dims)
	}
	return nil
}

func (k triangularKernel) NewConfig(dims int, params string) (*Config, error) {
	if err := k.VerifyConfig(dims, params); err != nil {
		return nil, err
	}
	return newConfig(k.Name(), dims, nil), nil
}

func (triangularKernel) Range(cfg *Config) float64 { return 1 }

func (k triangularKernel) EffectiveRange(cfg *Config, quality float64) float64 {
	return k.Range(cfg)
}

func (triangularKernel) Weight(cfg *Config, delta []float64) float64 {
	r := math.Sqrt(normSq(delta))
	if r >= 1 {
		return 0
	}
	return 1 - r
}

func (triangularKernel) Norm(cfg *Config) float64 {
	return unitBallVolume(cfg.Dims) / float64(cfg.Dims+1)
}

func (k triangularKernel) Draw(cfg *Config, src *rng.Source, out []float64) {
	// Rejection sample against the uniform ball: triangular <= uniform's
	// constant envelope (value 1 at the origin, decaying outward).
	for {
		drawUniformBall(cfg.Dims, src, out)
		r := math.Sqrt(normSq(out))
		if src.Float64() <= 1-r {
			return
		}
	}
}

func (triangularKernel) Offset(cfg *Config, center, target []float64) {}
