// Package export writes elongation series as CSV, JSON or SVG. Every writer
// takes an io.Writer; nothing here touches the filesystem.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Data is the JSON document written by WriteJSON.
type Data struct {
	Params      dynamo.Params      `json:"params"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Elongations []float64          `json:"elongations"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

func NewData(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64) Data {
	return Data{
		Params:      p,
		Steps:       ts.Len(),
		Times:       ts.Times,
		Elongations: ts.Elongations,
		Metrics:     m,
	}
}

func WriteJSON(w io.Writer, data Data) error {
	if data.Times == nil {
		data.Times = []float64{}
	}
	if data.Elongations == nil {
		data.Elongations = []float64{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteCSV writes a time,elongation header followed by one row per sample.
func WriteCSV(w io.Writer, ts dynamo.TimeSeries) error {
	if err := ts.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "elongation"}); err != nil {
		return err
	}
	for i, t := range ts.Times {
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.FormatFloat(ts.Elongations[i], 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) (dynamo.TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return dynamo.TimeSeries{}, err
	}

	var ts dynamo.TimeSeries
	for i, record := range records {
		if i == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return dynamo.TimeSeries{}, err
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return dynamo.TimeSeries{}, err
		}
		ts.Times = append(ts.Times, t)
		ts.Elongations = append(ts.Elongations, e)
	}
	return ts, nil
}
