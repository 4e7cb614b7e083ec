package kernel

import (
	"strings"

	"github.com/arimanyus/meanshift/internal/kerr"
)

var registry = []Kernel{
	uniformKernel{},
	triangularKernel{},
	epanechnikovKernel{},
	gaussianKernel{},
	cauchyKernel{},
	fisherKernel{},
	compositeKernel{},
}

// List returns the names of every registered kernel.
func List() []string {
	names := make([]string, len(registry))
	for i, k := range registry {
		names[i] = k.Name()
	}
	return names
}

// ByName resolves a (possibly parameterized) kernel name string to its
// Kernel implementation and the parameter suffix to feed to VerifyConfig /
// NewConfig.
//
// Per spec §9's open question, this deliberately does NOT replicate the
// source's unchecked longest-prefix-match: a kernel without a configuration
// template must match the whole name exactly, and a kernel with a
// configuration template must be spelled "name(suffix)" with a literal
// closing paren, which VerifyConfig is responsible for validating.
func ByName(s string) (Kernel, string, error) {
	for _, k := range registry {
		name := k.Name()
		if _, hasConfig := k.ConfigTemplate(); !hasConfig {
			if s == name {
				return k, "", nil
			}
			continue
		}
		prefix := name + "("
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, ")") {
			return k, s[len(prefix) : len(s)-1], nil
		}
	}
	return nil, "", kerr.New(kerr.UnknownName, "unknown kernel %q", s)
}

// Info returns the description for a registered kernel name (base name, no
// parameter suffix).
func Info(name string) (string, error) {
	for _, k := range registry {
		if k.Name() == name {
			return k.Description(), nil
		}
	}
	return "", kerr.New(kerr.UnknownName, "unknown kernel %q", name)
}

// InfoConfig returns the parameter-string template for a registered kernel
// name, or ok=false if it takes no parameters.
func InfoConfig(name string) (template string, ok bool, err error) {
	for _, k := range registry {
		if k.Name() == name {
			t, has := k.ConfigTemplate()
			return t, has, nil
		}
	}
	return "", false, kerr.New(kerr.UnknownName, "unknown kernel %q", name)
}
