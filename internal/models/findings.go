package models

import "time"

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// ResourceType identifies the kind of AWS resource a finding refers to.
type ResourceType string

const (
	ResourceIAMUser      ResourceType = "IAM_USER"
	ResourceIAMAccessKey ResourceType = "IAM_ACCESS_KEY"
	ResourceIAMPolicy    ResourceType = "IAM_POLICY"
	ResourceIAMRole      ResourceType = "IAM_ROLE"
	ResourceKMSKey       ResourceType = "KMS_KEY"
	ResourceSecret       ResourceType = "SECRET"

	ResourceS3Bucket ResourceType = "S3_BUCKET"
	ResourceECRRepo  ResourceType = "ECR_REPOSITORY"

	ResourceAPIStage     ResourceType = "APIGW_STAGE"
	ResourceStateMachine ResourceType = "STATE_MACHINE"
	ResourceStream       ResourceType = "KINESIS_STREAM"
	ResourceLambda       ResourceType = "LAMBDA_FUNCTION"
	ResourceLoadBalancer ResourceType = "LOAD_BALANCER"

	ResourceAccount     ResourceType = "ACCOUNT"
	ResourceEC2Instance ResourceType = "EC2_INSTANCE"
	ResourceEBSVolume   ResourceType = "EBS_VOLUME"
	ResourceRDSInstance ResourceType = "RDS_INSTANCE"
	ResourceLogGroup    ResourceType = "LOG_GROUP"
)

// Finding is a single detected audit issue.
// It is the atomic output unit of the rule engine.
type Finding struct {
	ID                      string         `json:"id"`
	RuleID                  string         `json:"rule_id"`
	ResourceID              string         `json:"resource_id"`
	ResourceType            ResourceType   `json:"resource_type"`
	Region                  string         `json:"region"`
	AccountID               string         `json:"account_id"`
	Profile                 string         `json:"profile"`
	Domain                  string         `json:"domain"`
	Severity                Severity       `json:"severity"`
	EstimatedMonthlySavings float64        `json:"estimated_monthly_savings_usd,omitempty"`
	Explanation             string         `json:"explanation"`
	Recommendation          string         `json:"recommendation"`
	DetectedAt              time.Time      `json:"detected_at"`
	Metadata                map[string]any `json:"metadata,omitempty"`
}

// AuditSummary aggregates counts and totals across all findings.
type AuditSummary struct {
	TotalFindings                int     `json:"total_findings"`
	CriticalFindings             int     `json:"critical_findings"`
	HighFindings                 int     `json:"high_findings"`
	MediumFindings               int     `json:"medium_findings"`
	LowFindings                  int     `json:"low_findings"`
	TotalEstimatedMonthlySavings float64 `json:"total_estimated_monthly_savings_usd"`
}

// AuditReport is the top-level output of any audit run.
type AuditReport struct {
	ReportID    string       `json:"report_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	AuditType   string       `json:"audit_type"`
	Profile     string       `json:"profile"`
	AccountID   string       `json:"account_id"`
	Regions     []string     `json:"regions"`
	Summary     AuditSummary `json:"summary"`
	Findings    []Finding    `json:"findings"`
	// Billing carries the Cost Explorer daily spend series for cost audits.
	// Nil for other audit types or when Cost Explorer was unreachable.
	Billing *BillingSummary `json:"billing,omitempty"`
}
