// Package vectortext implements the canonical text encoding of embedding
// vectors used by the storage layer's native vector-construction operator.
package vectortext

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/datasage-io/datasage/domain/knowledge"
)

// Format encodes a vector as bracketed, comma-separated decimals:
//
//	[0.1234,-0.0056,1]
//
// Components are rendered with the shortest decimal representation that
// round-trips exactly, never in scientific notation. Fails with
// knowledge.ErrFormat if the vector is empty or contains NaN or Inf.
func Format(vec []float64) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("%w: empty vector", knowledge.ErrFormat)
	}

	var b strings.Builder
	b.Grow(len(vec) * 10)
	b.WriteByte('[')
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: non-finite component at index %d", knowledge.ErrFormat, i)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Parse decodes the text produced by Format back into a vector. It is the
// exact inverse: Parse(Format(v)) equals v within 1e-6 per component for any
// finite input. Fails with knowledge.ErrFormat on malformed text.
func Parse(text string) ([]float64, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: missing brackets", knowledge.ErrFormat)
	}

	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, fmt.Errorf("%w: empty vector", knowledge.ErrFormat)
	}

	parts := strings.Split(inner, ",")
	vec := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", knowledge.ErrFormat, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite component at index %d", knowledge.ErrFormat, i)
		}
		vec[i] = v
	}
	return vec, nil
}
