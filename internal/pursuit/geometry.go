package pursuit

import (
	"fmt"
	"math"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
)

// Heading follows the directions both parties travel along. The hunter
// starts at the origin heading along +x with the rabbit at (D0, 0); each
// cycle the rabbit turns by asin(1/L) relative to the line towards the
// hunter and the hunter turns towards the rabbit's last known position.
// Angles are wrapped into [-π, π).
type Heading[T any] struct {
	b      precision.Backend[T]
	one    T
	pi     T
	negPi  T
	tau    T
	rabbit T
	hunter T
	asinL  T
	cycles int64
}

func NewHeading[T any](b precision.Backend[T]) *Heading[T] {
	pi := b.Pi()
	h := &Heading[T]{
		b:     b,
		one:   b.FromFloat(1),
		pi:    pi,
		negPi: b.Sub(b.FromFloat(0), pi),
		tau:   b.Add(pi, pi),
	}
	h.Reset()
	return h
}

func (h *Heading[T]) Reset() {
	h.rabbit = h.b.FromFloat(0)
	h.hunter = h.b.FromFloat(0)
	h.cycles = 0
}

// Turn returns the rabbit and hunter headings for a cycle of length l
// started at separation d.
func (h *Heading[T]) Turn(d, l T) (rabbit, hunter T, err error) {
	b := h.b
	al, err := h.asinInv(l)
	if err != nil {
		return rabbit, hunter, err
	}

	if h.cycles == 0 {
		h.rabbit = h.wrap(b.Add(h.rabbit, al))
	} else {
		ad, err := h.asinInv(d)
		if err != nil {
			return rabbit, hunter, err
		}
		h.hunter = h.wrap(b.Add(h.hunter, ad))
		h.rabbit = h.wrap(b.Add(h.rabbit, b.Sub(b.Add(al, ad), h.asinL)))
	}

	h.asinL = al
	h.cycles++
	return h.rabbit, h.hunter, nil
}

func (h *Heading[T]) asinInv(x T) (T, error) {
	r, err := h.b.Asin(h.b.Div(h.one, x))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: asin(1/%s): %v", ErrInternalInvariant, h.b.Text(x, 12), err)
	}
	return r, nil
}

func (h *Heading[T]) wrap(x T) T {
	for h.b.Cmp(x, h.pi) >= 0 {
		x = h.b.Sub(x, h.tau)
	}
	for h.b.Cmp(x, h.negPi) < 0 {
		x = h.b.Add(x, h.tau)
	}
	return x
}

// WrapAngle maps x into [-π, π).
func WrapAngle(x float64) float64 {
	r := math.Mod(x+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

type Point struct {
	X, Y float64
}

// Track holds float64 positions of both parties, for plotting.
type Track struct {
	Rabbit Point
	Hunter Point
}

func NewTrack(d0 float64) Track {
	return Track{Rabbit: Point{X: d0}}
}

// Advance moves both parties by l along their headings.
func (t *Track) Advance(l, rabbit, hunter float64) {
	s, c := math.Sincos(rabbit)
	t.Rabbit.X += l * c
	t.Rabbit.Y += l * s
	s, c = math.Sincos(hunter)
	t.Hunter.X += l * c
	t.Hunter.Y += l * s
}

func (t Track) Separation() float64 {
	return math.Hypot(t.Rabbit.X-t.Hunter.X, t.Rabbit.Y-t.Hunter.Y)
}
