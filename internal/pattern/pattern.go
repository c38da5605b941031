// Package pattern reads theta-rho pattern files into coordinate paths.
//
// A theta-rho file is UTF-8 text with one coordinate pair per line, theta and
// rho separated by whitespace. Blank lines and lines starting with '#' are
// headers or comments. Anything else that does not parse as exactly two
// floats is skipped with a diagnostic; a bad line never aborts the parse.
package pattern

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/sandline/sandline/internal/monitoring"
)

// Coordinate is a single point on the table in polar coordinates. Theta is
// angular position in radians, Rho a radial distance. No range validation
// happens on the host; the table firmware clamps what it cannot reach.
type Coordinate struct {
	Theta float64
	Rho   float64
}

// Parse reads theta-rho lines from r until EOF. Malformed lines are logged
// and dropped. The returned error is only non-nil when reading itself fails.
func Parse(r io.Reader) ([]Coordinate, error) {
	var coords []Coordinate

	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			monitoring.Logf("pattern: skipping line %d: want 2 fields, got %d", lineNo, len(fields))
			continue
		}

		theta, errT := strconv.ParseFloat(fields[0], 64)
		rho, errR := strconv.ParseFloat(fields[1], 64)
		if errT != nil || errR != nil {
			monitoring.Logf("pattern: skipping line %d: %q is not a coordinate pair", lineNo, line)
			continue
		}
		if math.IsNaN(theta) || math.IsNaN(rho) || math.IsInf(theta, 0) || math.IsInf(rho, 0) {
			monitoring.Logf("pattern: skipping line %d: non-finite coordinate %q", lineNo, line)
			continue
		}

		coords = append(coords, Coordinate{Theta: theta, Rho: rho})
	}
	if err := scan.Err(); err != nil {
		return coords, err
	}
	return coords, nil
}

// ParseFile parses the theta-rho file at path.
func ParseFile(path string) ([]Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// PathLength returns the total length of the path in theta-rho space, i.e.
// the sum of the straight-line segment lengths sqrt(dTheta² + dRho²).
func PathLength(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}
	segs := make([]float64, len(coords)-1)
	for i := 1; i < len(coords); i++ {
		segs[i-1] = math.Hypot(coords[i].Theta-coords[i-1].Theta, coords[i].Rho-coords[i-1].Rho)
	}
	return floats.Sum(segs)
}
