// Package vehicle implements the vehicle-state predictor (C8): the
// per-particle predict → project → measure → sample → update
// sequencing that binds the Kalman filters (C4), projection (C5),
// transition model (C6) and covariance learners (C7) into one step.
package vehicle

import (
	"time"

	"github.com/mapmatch/core/internal/geom"
)

// Observation is one fix from the GPS ingestion/coordinate-projection
// collaborator: (source_id, timestamp, projected_xy, previous_obs?)
// per spec.md §3, plus the optional producer fields spec.md §6 lists
// as inputs but the core math never consumes beyond velocity-seeding.
type Observation struct {
	SourceID     string
	Timestamp    time.Time
	ProjectedXY  geom.Point
	PreviousObs  *Observation // weak back-reference; Reset() severs it

	Velocity     *float64
	Heading      *float64
	Accuracy     *float64
	RecordNumber int
}

// Reset severs the back-reference to the previous observation once a
// caller no longer needs it for velocity-seeding, so a long observation
// chain doesn't pin the whole history in memory.
func (o *Observation) Reset() {
	o.PreviousObs = nil
}

// SeedVelocity estimates an initial ground velocity from the
// finite-difference between o and its previous observation, or
// (0, 0) if there is none.
func (o *Observation) SeedVelocity() (vx, vy float64) {
	if o.PreviousObs == nil {
		return 0, 0
	}
	dt := o.Timestamp.Sub(o.PreviousObs.Timestamp).Seconds()
	if dt <= 0 {
		return 0, 0
	}
	return (o.ProjectedXY.X - o.PreviousObs.ProjectedXY.X) / dt,
		(o.ProjectedXY.Y - o.PreviousObs.ProjectedXY.Y) / dt
}
