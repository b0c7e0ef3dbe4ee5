// Package traffic provides the traffic audit rule pack covering API Gateway
// stages, Step Functions state machines, Kinesis streams, Lambda functions,
// and load balancers.
package traffic

import "github.com/opsaudit/opsaudit/internal/rules"

// New returns the default traffic audit rule pack.
func New() []rules.Rule {
	return []rules.Rule{
		rules.APIGWHigh5XXRule{},            // HIGH:   stage returning server errors
		rules.SFNExecutionsFailingRule{},    // HIGH:   state machine executions failing
		rules.APIGWStageNoLoggingRule{},     // MEDIUM: stage without access logging
		rules.LambdaTimeoutNearLimitRule{},  // MEDIUM: function duration near its timeout
		rules.KinesisStreamIdleRule{},       // MEDIUM: stream receiving no records
		rules.ELBIdleRule{},                 // MEDIUM: load balancer serving no traffic
		rules.KinesisLowRetentionRule{},     // LOW:    stream retention too short to replay
		rules.LambdaUnusedRule{},            // LOW:    function never invoked
	}
}
