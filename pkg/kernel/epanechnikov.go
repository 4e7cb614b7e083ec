package kernel

import (
	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

type epanechnikovKernel struct{}

func (epanechnikovKernel) Name() string        { return "epanechnikov" }
func (epanechnikovKernel) Description() string { return "Quadratic falloff kernel, zero outside the unit ball, optimal MISE for KDE." }
func (epanechnikovKernel) ConfigTemplate() (string, bool) { return "", false }

func (epanechnikovKernel) VerifyConfig(dims int, params string) error {
	if params != "" {
		return kerr.New(kerr.ConfigError, "epanechnikov kernel takes no parameters, got %q", params)
	}
	if dims <= 0 {
		return kerr.New(kerr.ConfigError, "dims must be positive, got %d", dims)
	}
	return nil
}

func (k epanechnikovKernel) NewConfig(dims int, params string) (*Config, error) {
	if err := k.VerifyConfig(dims, params); err != nil {
		return nil, err
	}
	return newConfig(k.Name(), dims, nil), nil
}

func (epanechnikovKernel) Range(cfg *Config) float64 { return 1 }

func (k epanechnikovKernel) EffectiveRange(cfg *Config, quality float64) float64 {
	return k.Range(cfg)
}

func (epanechnikovKernel) Weight(cfg *Config, delta []float64) float64 {
	s := normSq(delta)
	if s >= 1 {
		return 0
	}
	return 1 - s
}

func (epanechnikovKernel) Norm(cfg *Config) float64 {
	d := float64(cfg.Dims)
	return 2 * unitBallVolume(cfg.Dims) / (d + 2)
}

func (k epanechnikovKernel) Draw(cfg *Config, src *rng.Source, out []float64) {
	for {
		drawUniformBall(cfg.Dims, src, out)
		s := normSq(out)
		if src.Float64() <= 1-s {
			return
		}
	}
}

func (epanechnikovKernel) Offset(cfg *Config, center, target []float64) {}
