package compare

import (
	"iter"
	"math"
)

// Stats are running aggregates over a comparison; they take constant
// memory regardless of how many records are observed.
type Stats struct {
	Count      int64
	MaxAbs     float64
	MaxRel     float64
	MaxRelStep int64
	MeanAbs    float64
	MeanRel    float64
	MaxAngle   float64
	Final      Record
}

func (s *Stats) Observe(r Record) {
	s.Count++
	n := float64(s.Count)
	s.MeanAbs += (r.AbsErr - s.MeanAbs) / n
	s.MeanRel += (r.RelErr - s.MeanRel) / n
	s.MaxAbs = math.Max(s.MaxAbs, r.AbsErr)
	if r.RelErr > s.MaxRel || s.Count == 1 {
		s.MaxRel = r.RelErr
		s.MaxRelStep = r.Step
	}
	if r.HasAngle {
		s.MaxAngle = math.Max(s.MaxAngle, r.AngleErr)
	}
	s.Final = r
}

// Summarize drains seq into Stats.
func Summarize(seq iter.Seq[Record]) Stats {
	var s Stats
	for r := range seq {
		s.Observe(r)
	}
	return s
}
