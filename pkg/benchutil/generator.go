// Package benchutil generates synthetic S3 object data for benchmarks.
package benchutil

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// FakeObject is one synthetic S3 object.
type FakeObject struct {
	Key          string
	Size         int64
	StorageClass string
}

// GeneratorConfig controls the shape of generated data.
type GeneratorConfig struct {
	// NumObjects is the total number of objects to generate.
	NumObjects int
	// PrefixFanout is the average number of children per prefix segment.
	PrefixFanout int
	// MaxDepth is the maximum key depth.
	MaxDepth int
	// ClassDistribution maps storage class names to their probability.
	// Nil means every object is STANDARD.
	ClassDistribution map[string]float64
	// Seed for reproducible generation. 0 uses a fixed default.
	Seed int64
}

// DefaultConfig returns a config resembling a date-partitioned bucket.
func DefaultConfig(numObjects int) GeneratorConfig {
	return GeneratorConfig{
		NumObjects:   numObjects,
		PrefixFanout: 12,
		MaxDepth:     6,
		ClassDistribution: map[string]float64{
			"STANDARD":     0.60,
			"STANDARD_IA":  0.15,
			"GLACIER_IR":   0.10,
			"GLACIER":      0.10,
			"DEEP_ARCHIVE": 0.05,
		},
		Seed: 42,
	}
}

// Generator produces reproducible synthetic objects.
type Generator struct {
	cfg     GeneratorConfig
	rng     *rand.Rand
	classes []string
	cumProb []float64
}

// NewGenerator creates a generator. Class names are sampled in sorted
// order so the same seed always yields the same sequence.
func NewGenerator(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	g := &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}

	for class := range cfg.ClassDistribution {
		g.classes = append(g.classes, class)
	}
	sort.Strings(g.classes)
	total := 0.0
	for _, class := range g.classes {
		total += cfg.ClassDistribution[class]
		g.cumProb = append(g.cumProb, total)
	}
	return g
}

// Objects generates the configured number of objects.
func (g *Generator) Objects() []FakeObject {
	objs := make([]FakeObject, g.cfg.NumObjects)
	for i := range objs {
		objs[i] = FakeObject{
			Key:          g.key(),
			Size:         g.size(),
			StorageClass: g.class(),
		}
	}
	return objs
}

var extensions = []string{".json", ".csv", ".txt", ".gz", ".log", ".dat"}

func (g *Generator) key() string {
	depth := 1 + g.rng.Intn(g.cfg.MaxDepth)
	var sb strings.Builder
	for d := 0; d < depth; d++ {
		sb.WriteString(g.segment())
		sb.WriteByte('/')
	}
	fmt.Fprintf(&sb, "file_%08x%s", g.rng.Uint32(), extensions[g.rng.Intn(len(extensions))])
	return sb.String()
}

func (g *Generator) segment() string {
	switch g.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("dt=%d-%02d-%02d", 2020+g.rng.Intn(5), 1+g.rng.Intn(12), 1+g.rng.Intn(28))
	case 1:
		return fmt.Sprintf("user_%05d", g.rng.Intn(g.cfg.PrefixFanout*100))
	case 2:
		categories := []string{"logs", "data", "exports", "backups", "raw", "archive"}
		return categories[g.rng.Intn(len(categories))]
	default:
		n := g.rng.Intn(g.cfg.PrefixFanout)
		if n < 26 {
			return string(rune('a' + n))
		}
		return string(rune('a'+n/26-1)) + string(rune('a'+n%26))
	}
}

// size draws from a rough log-normal mix, mostly small files with a
// long tail of multi-gigabyte ones.
func (g *Generator) size() int64 {
	switch g.rng.Intn(10) {
	case 0:
		return g.rng.Int63n(1024)
	case 1, 2, 3:
		return 1024 + g.rng.Int63n(1024*1024)
	case 4, 5, 6, 7:
		return 1024*1024 + g.rng.Int63n(100*1024*1024)
	case 8:
		return 100*1024*1024 + g.rng.Int63n(900*1024*1024)
	default:
		return 1024*1024*1024 + g.rng.Int63n(4*1024*1024*1024)
	}
}

func (g *Generator) class() string {
	if len(g.classes) == 0 {
		return "STANDARD"
	}
	r := g.rng.Float64()
	for i, p := range g.cumProb {
		if r < p {
			return g.classes[i]
		}
	}
	return g.classes[len(g.classes)-1]
}
