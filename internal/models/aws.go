package models

import "time"

// MetricValue is the result of a CloudWatch lookback-window query.
//
// HasData distinguishes "the metric was measured" from "the call failed or
// returned no datapoints". Rules must never treat a zero Value with
// HasData == false as a confirmed measurement; doing so turns API failures
// into false findings.
type MetricValue struct {
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
}

// Measured returns a MetricValue carrying a real datapoint.
func Measured(v float64) MetricValue { return MetricValue{Value: v, HasData: true} }

// NoData returns the MetricValue used when CloudWatch had nothing to report.
func NoData() MetricValue { return MetricValue{} }

// ---------------------------------------------------------------------------
// identity domain — IAM / KMS / Secrets Manager
// ---------------------------------------------------------------------------

// IAMUser represents a single collected IAM user.
type IAMUser struct {
	UserName        string    `json:"user_name"`
	CreatedAt       time.Time `json:"created_at"`
	MFAEnabled      bool      `json:"mfa_enabled"`
	HasLoginProfile bool      `json:"has_login_profile"`
}

// IAMAccessKey represents a single collected IAM access key.
type IAMAccessKey struct {
	UserName  string    `json:"user_name"`
	KeyID     string    `json:"key_id"`
	Status    string    `json:"status"` // Active | Inactive
	CreatedAt time.Time `json:"created_at"`
}

// IAMPolicy represents a customer-managed IAM policy together with the
// wildcard analysis of its default policy version document.
type IAMPolicy struct {
	PolicyName      string    `json:"policy_name"`
	ARN             string    `json:"arn"`
	AttachmentCount int32     `json:"attachment_count"`
	CreatedAt       time.Time `json:"created_at"`
	// WildcardAction / WildcardResource are true when any Allow statement in
	// the default version carries Action "*" / Resource "*" respectively.
	// FullWildcard is true only when a single Allow statement carries both.
	WildcardAction   bool `json:"wildcard_action"`
	WildcardResource bool `json:"wildcard_resource"`
	FullWildcard     bool `json:"full_wildcard"`
}

// IAMRole represents a single collected IAM role.
type IAMRole struct {
	RoleName  string    `json:"role_name"`
	ARN       string    `json:"arn"`
	CreatedAt time.Time `json:"created_at"`
	// LastUsedAt is nil when the role has never been used (or IAM has not
	// recorded a use yet).
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// KMSKey represents a customer-managed KMS key.
type KMSKey struct {
	KeyID           string `json:"key_id"`
	ARN             string `json:"arn"`
	Region          string `json:"region"`
	Description     string `json:"description,omitempty"`
	State           string `json:"state"` // Enabled | Disabled | PendingDeletion | ...
	Symmetric       bool   `json:"symmetric"`
	RotationEnabled bool   `json:"rotation_enabled"`
}

// Secret represents a single Secrets Manager secret.
type Secret struct {
	Name            string     `json:"name"`
	ARN             string     `json:"arn"`
	Region          string     `json:"region"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAccessedAt  *time.Time `json:"last_accessed_at,omitempty"`
	LastRotatedAt   *time.Time `json:"last_rotated_at,omitempty"`
	RotationEnabled bool       `json:"rotation_enabled"`
}

// IdentitySnapshot holds everything the identity rules evaluate.
// IAM data is account-global; KMS keys and secrets carry their own region.
type IdentitySnapshot struct {
	CollectedAt time.Time      `json:"collected_at"`
	Users       []IAMUser      `json:"users"`
	AccessKeys  []IAMAccessKey `json:"access_keys"`
	Policies    []IAMPolicy    `json:"policies"`
	Roles       []IAMRole      `json:"roles"`
	KMSKeys     []KMSKey       `json:"kms_keys"`
	Secrets     []Secret       `json:"secrets"`
}

// ---------------------------------------------------------------------------
// storage domain — S3 / ECR
// ---------------------------------------------------------------------------

// S3MultipartUpload is one in-progress multipart upload in a bucket.
type S3MultipartUpload struct {
	Key         string    `json:"key"`
	UploadID    string    `json:"upload_id"`
	InitiatedAt time.Time `json:"initiated_at"`
}

// S3Bucket represents a single collected S3 bucket with its audit posture.
type S3Bucket struct {
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
	// PublicAccessBlocked is true only when all four public access block
	// settings are enabled on the bucket.
	PublicAccessBlocked bool                `json:"public_access_blocked"`
	DefaultEncryption   bool                `json:"default_encryption"`
	HasLifecycle        bool                `json:"has_lifecycle"`
	LoggingEnabled      bool                `json:"logging_enabled"`
	MultipartUploads    []S3MultipartUpload `json:"multipart_uploads,omitempty"`
}

// ECRRepository represents a single collected ECR repository.
type ECRRepository struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	// CountsKnown is false when the image listing failed; rules must not
	// read a zero ImageCount as "empty repository" in that case.
	CountsKnown   bool `json:"counts_known"`
	ImageCount    int  `json:"image_count"`
	UntaggedCount int  `json:"untagged_count"`
}

// StorageSnapshot holds everything the storage rules evaluate.
type StorageSnapshot struct {
	CollectedAt  time.Time       `json:"collected_at"`
	Buckets      []S3Bucket      `json:"buckets"`
	Repositories []ECRRepository `json:"repositories"`
}

// ---------------------------------------------------------------------------
// traffic domain — API Gateway / Step Functions / Kinesis / Lambda / ELBv2
// ---------------------------------------------------------------------------

// APIStage represents a deployed REST API stage.
type APIStage struct {
	APIID            string      `json:"api_id"`
	APIName          string      `json:"api_name"`
	StageName        string      `json:"stage_name"`
	Region           string      `json:"region"`
	AccessLogEnabled bool        `json:"access_log_enabled"`
	// Error5XX is the 5XXError sum over the lookback window.
	Error5XX MetricValue `json:"error_5xx"`
}

// StateMachine represents a Step Functions state machine.
type StateMachine struct {
	Name   string      `json:"name"`
	ARN    string      `json:"arn"`
	Region string      `json:"region"`
	// FailedExecutions is the ExecutionsFailed sum over the lookback window.
	FailedExecutions MetricValue `json:"failed_executions"`
}

// KinesisStream represents a Kinesis data stream.
type KinesisStream struct {
	Name           string      `json:"name"`
	Region         string      `json:"region"`
	RetentionHours int32       `json:"retention_hours"`
	// IncomingRecords is the IncomingRecords sum over the lookback window.
	IncomingRecords MetricValue `json:"incoming_records"`
}

// LambdaFunction represents a Lambda function with its activity metrics.
type LambdaFunction struct {
	Name           string      `json:"name"`
	Region         string      `json:"region"`
	TimeoutSeconds int32       `json:"timeout_seconds"`
	// MaxDurationMS is the maximum Duration (milliseconds) observed over the
	// lookback window; Invocations is the invocation sum over the same window.
	MaxDurationMS MetricValue `json:"max_duration_ms"`
	Invocations   MetricValue `json:"invocations"`
}

// LoadBalancer represents an ALB or NLB.
type LoadBalancer struct {
	Name   string      `json:"name"`
	ARN    string      `json:"arn"`
	Type   string      `json:"type"` // application | network
	Region string      `json:"region"`
	// RequestCount is the RequestCount sum over the lookback window.
	// NLBs have no RequestCount metric; ActiveFlowCount is used instead.
	RequestCount MetricValue `json:"request_count"`
}

// TrafficSnapshot holds everything the traffic rules evaluate.
type TrafficSnapshot struct {
	CollectedAt   time.Time        `json:"collected_at"`
	LookbackDays  int              `json:"lookback_days"`
	Stages        []APIStage       `json:"stages"`
	StateMachines []StateMachine   `json:"state_machines"`
	Streams       []KinesisStream  `json:"streams"`
	Functions     []LambdaFunction `json:"functions"`
	LoadBalancers []LoadBalancer   `json:"load_balancers"`
}

// ---------------------------------------------------------------------------
// cost domain — Cost Explorer / EC2 / EBS / RDS / CloudWatch Logs
// ---------------------------------------------------------------------------

// DailyCost is one day of unblended spend from Cost Explorer.
type DailyCost struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	AmountUSD float64 `json:"amount_usd"`
}

// BillingSummary holds the daily spend series, oldest first.
type BillingSummary struct {
	Days []DailyCost `json:"days"`
}

// EC2Instance represents a single collected EC2 instance.
type EC2Instance struct {
	InstanceID   string    `json:"instance_id"`
	Region       string    `json:"region"`
	InstanceType string    `json:"instance_type"`
	State        string    `json:"state"`
	LaunchTime   time.Time `json:"launch_time"`
	// StoppedAt is the state transition timestamp parsed from the stop
	// reason. Nil for running instances or when the reason is unparseable.
	StoppedAt *time.Time  `json:"stopped_at,omitempty"`
	AvgCPU    MetricValue `json:"avg_cpu"`
}

// EBSVolume represents a single collected EBS volume.
type EBSVolume struct {
	VolumeID   string `json:"volume_id"`
	Region     string `json:"region"`
	VolumeType string `json:"volume_type"`
	SizeGB     int32  `json:"size_gb"`
	State      string `json:"state"` // available | in-use | ...
	Attached   bool   `json:"attached"`
}

// RDSInstance represents a single collected RDS database instance.
type RDSInstance struct {
	DBInstanceID    string      `json:"db_instance_id"`
	Region          string      `json:"region"`
	DBInstanceClass string      `json:"db_instance_class"`
	Engine          string      `json:"engine"`
	Status          string      `json:"status"`
	AvgCPU          MetricValue `json:"avg_cpu"`
}

// LogGroup represents a CloudWatch Logs log group.
type LogGroup struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	// RetentionDays is nil when the group never expires.
	RetentionDays *int32 `json:"retention_days,omitempty"`
	StoredBytes   int64  `json:"stored_bytes"`
}

// SpendSnapshot holds everything the cost rules evaluate.
type SpendSnapshot struct {
	CollectedAt  time.Time       `json:"collected_at"`
	LookbackDays int             `json:"lookback_days"`
	Billing      *BillingSummary `json:"billing,omitempty"`
	Instances    []EC2Instance   `json:"instances"`
	Volumes      []EBSVolume     `json:"volumes"`
	DBInstances  []RDSInstance   `json:"db_instances"`
	LogGroups    []LogGroup      `json:"log_groups"`
}

// AccountSnapshot is the union of all domain snapshots for one account.
// Exactly one domain field is populated per audit run; rules must check
// their domain's field for nil before use.
type AccountSnapshot struct {
	Identity *IdentitySnapshot `json:"identity,omitempty"`
	Storage  *StorageSnapshot  `json:"storage,omitempty"`
	Traffic  *TrafficSnapshot  `json:"traffic,omitempty"`
	Spend    *SpendSnapshot    `json:"spend,omitempty"`
}
