package constraint

import "github.com/fixstep/rigid/fp"

// Penetration response tuning. Values follow the usual sequential-impulse
// ranges: a small slop keeps resting contacts from jittering, the recovery
// factor feeds a fraction of the remaining overlap back as velocity bias,
// and the cap bounds correction speed for deep overlaps
var (
	// PenetrationSlop is the overlap tolerated without correction
	PenetrationSlop = fp.FromFloat(0.005)
	// PenetrationRecoveryFactor scales how much overlap is corrected per step
	PenetrationRecoveryFactor = fp.FromFloat(0.2)
	// MaxPenetrationCorrectionSpeed caps the bias velocity
	MaxPenetrationCorrectionSpeed = fp.FromFloat(2)
)

// degenerate effective-mass guard: denominators at or below this solve to
// zero impulse instead of exploding
var effectiveMassEpsilon = fp.Scalar(16)
