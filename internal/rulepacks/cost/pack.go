// Package cost provides the cost audit rule pack covering daily spend,
// EC2 and RDS utilisation, EBS volumes, and CloudWatch log retention.
package cost

import "github.com/opsaudit/opsaudit/internal/rules"

// New returns the default cost audit rule pack.
func New() []rules.Rule {
	return []rules.Rule{
		rules.BillingSpikeRule{},          // HIGH:   daily spend jumped above trailing average
		rules.EC2LowCPURule{},             // MEDIUM: running instance with low average CPU
		rules.RDSLowCPURule{},             // MEDIUM: DB instance with low average CPU
		rules.EBSUnattachedRule{},         // MEDIUM: volume attached to nothing
		rules.EC2StoppedLongRule{},        // LOW:    instance stopped past the threshold
		rules.LogGroupNoRetentionRule{},   // LOW:    log group retaining data unbounded
	}
}
