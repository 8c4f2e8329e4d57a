// Package mandel evaluates the Mandelbrot set and builds images of it.
package mandel

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

var ErrUnknownRegion = errors.New("unknown region")

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Viewport returns the view centered on the region, as wide as the region.
func (r Region) Viewport() (Viewport, error) {
	if r.Xmax <= r.Xmin {
		return Viewport{}, fmt.Errorf("%w: region has no width", ErrInvalidViewport)
	}
	re := new(big.Float).Add(big.NewFloat(r.Xmin), big.NewFloat(r.Xmax))
	re.Quo(re, big.NewFloat(2))
	im := new(big.Float).Add(big.NewFloat(r.Ymin), big.NewFloat(r.Ymax))
	im.Quo(im, big.NewFloat(2))
	return NewViewportBig(re, im, big.NewFloat(r.Xmax-r.Xmin), Float64Precision)
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// The whole set
	Overview = Region{
		Xmin: -2,
		Xmax: 2,
		Ymin: -2,
		Ymax: 2,
	}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: 0.25,
		Xmax: 0.35,
		Ymin: -0.05,
		Ymax: 0.05,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var regions = map[string]Region{
	"overview":        Overview,
	"seahorse":        SeahorseValley,
	"elephant":        ElephantValley,
	"spiral-minibrot": SpiralMinibrot,
	"triple-spiral":   TripleSpiral,
	"dragon":          ValleyOfTheDragon,
	"mini-spiral":     MinibrotInMiniSpiral,
}

// RegionByName looks up one of the landmarks listed by RegionNames.
func RegionByName(name string) (Region, error) {
	r, ok := regions[name]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return r, nil
}

// RegionNames returns the sorted landmark names.
func RegionNames() []string {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
