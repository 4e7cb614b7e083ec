package kernel

import (
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

type uniformKernel struct{}

func (uniformKernel) Name() string        { return "uniform" }
func (uniformKernel) Description() string { return "Flat kernel, constant inside the unit ball, zero outside." }
func (uniformKernel) ConfigTemplate() (string, bool) { return "", false }

func (uniformKernel) VerifyConfig(dims int, params string) error {
	if params != "" {
		return kerr.New(kerr.ConfigError, "uniform kernel takes no parameters, got %q", params)
	}
	if dims <= 0 {
		return kerr.New(kerr.ConfigError, "dims must be positive, got %d", dims)
	}
	return nil
}

func (k uniformKernel) NewConfig(dims int, params string) (*Config, error) {
	if err := k.VerifyConfig(dims, params); err != nil {
		return nil, err
	}
	return newConfig(k.Name(), dims, nil), nil
}

func (uniformKernel) Range(cfg *Config) float64 { return 1 }

func (k uniformKernel) EffectiveRange(cfg *Config, quality float64) float64 {
	return k.Range(cfg)
}

func (uniformKernel) Weight(cfg *Config, delta []float64) float64 {
	if normSq(delta) <= 1 {
		return 1
	}
	return 0
}

func (uniformKernel) Norm(cfg *Config) float64 {
	return unitBallVolume(cfg.Dims)
}

func (k uniformKernel) Draw(cfg *Config, src *rng.Source, out []float64) {
	drawUniformBall(cfg.Dims, src, out)
}

func (uniformKernel) Offset(cfg *Config, center, target []float64) {
	// Euclidean kernel: ambient update is already the correct update.
}

// drawUniformBall samples uniformly from the unit ball in R^dims by drawing
// a random direction (normalized Gaussian vector) and a radius scaled by
// dims-th root of a uniform variate.
func drawUniformBall(dims int, src *rng.Source, out []float64) {
	var norm float64
	for i := 0; i < dims; i++ {
		out[i] = src.Normal()
		norm += out[i] * out[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	r := math.Pow(src.Float64(), 1/float64(dims))
	for i := range out {
		out[i] = out[i] / norm * r
	}
}
