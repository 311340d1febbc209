package cleanup

// Policy controls how much deployment history is retained per project.
type Policy struct {
	// KeepCount most recent deployments are never deleted.
	KeepCount int
}

func (p Policy) keep() int {
	if p.KeepCount < 0 {
		return 0
	}
	return p.KeepCount
}

// SelectForDeletion returns the deployments eligible for removal. Input must
// be ordered newest first. The first KeepCount entries are always kept; of
// the rest, anything still serving traffic, promoted to production, or
// missing the data needed to decide is kept as well.
func SelectForDeletion(deployments []Deployment, policy Policy) []Deployment {
	keep := policy.keep()
	if len(deployments) <= keep {
		return nil
	}

	var out []Deployment
	for _, d := range deployments[keep:] {
		if ProtectionReason(d) == "" {
			out = append(out, d)
		}
	}
	return out
}

// ProtectionReason reports why a deployment outside the keep window must not
// be deleted, or "" when it may be.
func ProtectionReason(d Deployment) string {
	switch {
	case d.StageStatus == StageStatusActive:
		return "active"
	case d.TriggerType == TriggerTypeProduction:
		return "production"
	case d.StageStatus == StageStatusUnknown:
		return "unknown status"
	case d.TriggerType == TriggerTypeUnknown:
		return "unknown trigger"
	case d.CreatedAt.IsZero():
		return "missing created_on"
	default:
		return ""
	}
}
