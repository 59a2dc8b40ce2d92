package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/compare"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

var (
	sampleHeader  = []string{"step", "d", "l"}
	trackHeader   = []string{"angle", "hunter_angle", "rabbit_x", "rabbit_y", "hunter_x", "hunter_y"}
	compareHeader = []string{"step", "d_a", "d_b", "abs_err", "rel_err", "angle_err"}
)

// lColumn indexes l among the value columns that follow step.
const lColumn = 1

func ff(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteSamples writes one row per sample. The geometry columns are only
// present when the first sample is tracked. Step 0 has no cycle yet, so
// its l cell is left empty.
func WriteSamples(out io.Writer, samples []sim.Sample) error {
	w := csv.NewWriter(out)

	tracked := len(samples) > 0 && samples[0].Tracked
	header := sampleHeader
	if tracked {
		header = append(append([]string{}, sampleHeader...), trackHeader...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range samples {
		l := ""
		if s.Step > 0 {
			l = ff(s.L)
		}
		row := []string{strconv.FormatInt(s.Step, 10), ff(s.D), l}
		if tracked {
			row = append(row,
				ff(s.Angle), ff(s.HunterAngle),
				ff(s.Rabbit.X), ff(s.Rabbit.Y),
				ff(s.Hunter.X), ff(s.Hunter.Y),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadSamples parses what WriteSamples produced.
func ReadSamples(in io.Reader) ([]sim.Sample, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < len(sampleHeader) {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", i+2, len(sampleHeader), len(record))
		}

		vals := make([]float64, len(record)-1)
		for j := range vals {
			if j == lColumn && record[j+1] == "" {
				continue
			}
			if vals[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		step, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		s := sim.Sample{Step: step, D: vals[0], L: vals[1]}
		if len(vals) >= 2+len(trackHeader) {
			s.Tracked = true
			s.Angle, s.HunterAngle = vals[2], vals[3]
			s.Rabbit.X, s.Rabbit.Y = vals[4], vals[5]
			s.Hunter.X, s.Hunter.Y = vals[6], vals[7]
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func WriteComparison(out io.Writer, recs []compare.Record) error {
	w := csv.NewWriter(out)
	if err := w.Write(compareHeader); err != nil {
		return err
	}
	for _, r := range recs {
		angle := ""
		if r.HasAngle {
			angle = ff(r.AngleErr)
		}
		row := []string{strconv.FormatInt(r.Step, 10), ff(r.DA), ff(r.DB), ff(r.AbsErr), ff(r.RelErr), angle}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTable writes an arbitrary header and rows.
func WriteTable(out io.Writer, header []string, rows [][]string) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func WriteCSV(path string, samples []sim.Sample) error {
	return toFile(path, func(w io.Writer) error { return WriteSamples(w, samples) })
}

func WriteComparisonCSV(path string, recs []compare.Record) error {
	return toFile(path, func(w io.Writer) error { return WriteComparison(w, recs) })
}

func WriteTableCSV(path string, header []string, rows [][]string) error {
	return toFile(path, func(w io.Writer) error { return WriteTable(w, header, rows) })
}

// WriteJSON writes v indented.
func WriteJSON(path string, v any) error {
	return toFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func toFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
