package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mapmatch/core/internal/geom"
	"github.com/mapmatch/core/internal/vehicle"
)

// loadObservations reads a source_id,timestamp,x,y CSV (RFC3339
// timestamps, header row required) and returns the fixes for a single
// source, in file order, with each fix's PreviousObs wired to its
// predecessor for SeedVelocity. A file mixing more than one source_id
// is rejected: this CLI tracks one vehicle per run.
func loadObservations(path string) ([]*vehicle.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("main: opening observations file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("main: reading observations header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("main: observations file %s: expected source_id,timestamp,x,y header", path)
	}

	var out []*vehicle.Observation
	var sourceID string
	record := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("main: reading observations row %d: %w", record, err)
		}
		if sourceID == "" {
			sourceID = row[0]
		} else if row[0] != sourceID {
			return nil, fmt.Errorf("main: observations file %s: multiple source_id values (%s, %s) not supported in one run", path, sourceID, row[0])
		}

		ts, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("main: parsing timestamp %q: %w", row[1], err)
		}
		x, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("main: parsing x %q: %w", row[2], err)
		}
		y, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("main: parsing y %q: %w", row[3], err)
		}

		obs := &vehicle.Observation{
			SourceID:     sourceID,
			Timestamp:    ts,
			ProjectedXY:  geom.Point{X: x, Y: y},
			RecordNumber: record,
		}
		if len(out) > 0 {
			obs.PreviousObs = out[len(out)-1]
		}
		out = append(out, obs)
		record++
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("main: observations file %s: no rows", path)
	}
	return out, nil
}
