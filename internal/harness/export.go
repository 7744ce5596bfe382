package harness

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Snapshot is one exported row: a single particle's state at a single
// step, mirroring the teacher's CSVAppend-style per-record hook.
type Snapshot struct {
	Timestamp time.Time
	Particle  int
	X, Y      float64
	VX, VY    float64
	OnRoad    bool
	EdgeID    string
}

// CSVWriter streams Snapshots to a CSV file from a channel, draining
// with a sync.WaitGroup exactly like the teacher's StreamStates loop
// reading off a MissionState channel.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	wg     sync.WaitGroup
}

// NewCSVWriter creates filename and writes its header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("harness: creating %s: %w", filename, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "particle", "x", "y", "vx", "vy", "on_road", "edge_id"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("harness: writing header: %w", err)
	}
	return &CSVWriter{file: f, writer: w}, nil
}

// Stream consumes snapshots off ch in a goroutine until it closes,
// writing one CSV row per snapshot; Close waits for it, then flushes
// and closes the file.
func (c *CSVWriter) Stream(ch <-chan Snapshot) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for s := range ch {
			row := []string{
				s.Timestamp.UTC().Format(time.RFC3339Nano),
				strconv.Itoa(s.Particle),
				strconv.FormatFloat(s.X, 'f', -1, 64),
				strconv.FormatFloat(s.Y, 'f', -1, 64),
				strconv.FormatFloat(s.VX, 'f', -1, 64),
				strconv.FormatFloat(s.VY, 'f', -1, 64),
				strconv.FormatBool(s.OnRoad),
				s.EdgeID,
			}
			if err := c.writer.Write(row); err != nil {
				return
			}
		}
	}()
}

// Close waits for Stream to drain its channel, flushes, and closes the
// underlying file.
func (c *CSVWriter) Close() error {
	c.wg.Wait()
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

// SnapshotsFromParticleSet builds one Snapshot per particle for the
// given timestamp, ready to push onto a Stream channel.
func SnapshotsFromParticleSet(ps *ParticleSet, ts time.Time) []Snapshot {
	out := make([]Snapshot, len(ps.Particles))
	for i, p := range ps.Particles {
		x, vx, y, vy := groundPoint(p.State)
		edgeID := ""
		onRoad := !p.State.Path.IsNull()
		if onRoad {
			edgeID = p.State.Path.LastEdge().ID()
		}
		out[i] = Snapshot{Timestamp: ts, Particle: i, X: x, Y: y, VX: vx, VY: vy, OnRoad: onRoad, EdgeID: edgeID}
	}
	return out
}

// DistributionCatalog is the aggregated JSON summary written at the
// end of a run, mirroring the teacher's Cosmographia catalog writer
// (one JSON document, written once, with a version tag).
type DistributionCatalog struct {
	Version string             `json:"version"`
	Steps   []DataDistribution `json:"steps"`
}

// WriteJSON marshals a DistributionCatalog to filename.
func WriteJSON(filename string, steps []DataDistribution) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("harness: creating %s: %w", filename, err)
	}
	defer f.Close()

	catalog := DistributionCatalog{Version: "1.0", Steps: steps}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return fmt.Errorf("harness: encoding catalog: %w", err)
	}
	return nil
}
