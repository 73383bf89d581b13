package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/massim/internal/dynamo"
)

var csvHeader = []string{"time", "particle", "x", "y", "vx", "vy"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per particle per frame.
func WriteCSV(w io.Writer, result *dynamo.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	d := result.Extract()
	for f, t := range d.Time {
		for i := range d.Positions[f] {
			p, v := d.Positions[f][i], d.Velocities[f][i]
			row := []string{
				formatFloat(t),
				strconv.Itoa(i),
				formatFloat(p.X),
				formatFloat(p.Y),
				formatFloat(v.X),
				formatFloat(v.Y),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV back into frame-major series.
func ReadCSV(r io.Reader, particles int) ([]float64, [][]dynamo.Vec2, [][]dynamo.Vec2, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, nil, fmt.Errorf("%w: missing csv header", ErrCorruptRun)
	}
	records = records[1:]

	if particles == 0 {
		if len(records) != 0 {
			return nil, nil, nil, fmt.Errorf("%w: rows for a run without particles", ErrCorruptRun)
		}
		return []float64{}, [][]dynamo.Vec2{}, [][]dynamo.Vec2{}, nil
	}
	if len(records)%particles != 0 {
		return nil, nil, nil, fmt.Errorf("%w: %d rows for %d particles", ErrCorruptRun, len(records), particles)
	}

	frames := len(records) / particles
	times := make([]float64, frames)
	positions := make([][]dynamo.Vec2, frames)
	velocities := make([][]dynamo.Vec2, frames)

	for f := 0; f < frames; f++ {
		positions[f] = make([]dynamo.Vec2, particles)
		velocities[f] = make([]dynamo.Vec2, particles)
		for i := 0; i < particles; i++ {
			row := records[f*particles+i]
			vals := make([]float64, len(row))
			for j, field := range row {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, nil, nil, fmt.Errorf("%w: row %d: %v", ErrCorruptRun, f*particles+i+2, err)
				}
				vals[j] = v
			}
			if int(vals[1]) != i {
				return nil, nil, nil, fmt.Errorf("%w: row %d has particle %d, expected %d", ErrCorruptRun, f*particles+i+2, int(vals[1]), i)
			}
			times[f] = vals[0]
			positions[f][i] = dynamo.V(vals[2], vals[3])
			velocities[f][i] = dynamo.V(vals[4], vals[5])
		}
	}

	return times, positions, velocities, nil
}

// WriteEnergy writes the whitespace separated time and energy columns.
func WriteEnergy(w io.Writer, result *dynamo.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# time energy")
	times, energies := result.Times(), result.Energies()
	for f := range times {
		fmt.Fprintf(bw, "%s %s\n", formatFloat(times[f]), formatFloat(energies[f]))
	}
	return bw.Flush()
}
