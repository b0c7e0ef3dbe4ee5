package common

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultAWSClientProvider is the production implementation of
// AWSClientProvider. It reads credentials from the standard AWS shared config
// and credentials files using the AWS SDK v2.
//
// Inject a custom DiscoveryClientFactory via NewAWSClientProviderWithFactory
// to replace real SDK clients with mocks in unit tests.
type DefaultAWSClientProvider struct {
	factory DiscoveryClientFactory

	// mu guards discovery. GetActiveRegions is called from concurrent
	// per-profile goroutines during multi-profile audits.
	mu sync.Mutex
	// discovery caches the clients built for each loaded profile so
	// GetActiveRegions reuses them.
	discovery map[string]*DiscoveryClients
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return NewAWSClientProviderWithFactory(NewDiscoveryClients)
}

// NewAWSClientProviderWithFactory returns a provider that uses f to create
// its discovery clients. Pass a mock factory in tests.
func NewAWSClientProviderWithFactory(f DiscoveryClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{
		factory:   f,
		discovery: make(map[string]*DiscoveryClients),
	}
}

// LoadProfile loads the AWS SDK config for the named profile and returns a
// ProfileConfig with the account ID resolved through STS.
// Pass an empty string to load the default profile.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", displayName(profile), err)
	}

	// Profiles without a configured region still need constructible clients.
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	clients := p.factory(cfg)
	p.mu.Lock()
	p.discovery[displayName(profile)] = clients
	p.mu.Unlock()

	out, err := clients.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", displayName(profile), err)
	}
	if out.Account == nil {
		return nil, fmt.Errorf("STS GetCallerIdentity returned nil account")
	}

	return &ProfileConfig{
		ProfileName: displayName(profile),
		AccountID:   aws.ToString(out.Account),
		Region:      cfg.Region,
		Config:      cfg,
	}, nil
}

// LoadAllProfiles discovers every profile defined in ~/.aws/credentials and
// ~/.aws/config, loads each one, and returns the successfully loaded set.
// Profiles that cannot be loaded (missing credentials, invalid config) are
// skipped so one bad profile does not block the rest.
func (p *DefaultAWSClientProvider) LoadAllProfiles(ctx context.Context) ([]*ProfileConfig, error) {
	names, err := discoverProfileNames()
	if err != nil {
		return nil, fmt.Errorf("discover AWS profiles: %w", err)
	}

	var profiles []*ProfileConfig
	for _, name := range names {
		arg := ""
		if name != "default" {
			arg = name
		}
		pc, loadErr := p.LoadProfile(ctx, arg)
		if loadErr != nil {
			continue
		}
		profiles = append(profiles, pc)
	}
	return profiles, nil
}

// GetActiveRegions returns all AWS regions that are enabled (opted-in) for
// the account associated with cfg. EC2 DescribeRegions is a global call and
// works regardless of the client's home region.
func (p *DefaultAWSClientProvider) GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error) {
	p.mu.Lock()
	clients, ok := p.discovery[cfg.ProfileName]
	if !ok {
		clients = p.factory(cfg.Config)
		p.discovery[cfg.ProfileName] = clients
	}
	p.mu.Unlock()

	out, err := clients.EC2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		// AllRegions false returns only regions the account has opted into.
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions for profile %q: %w", cfg.ProfileName, err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if r.RegionName != nil {
			regions = append(regions, *r.RegionName)
		}
	}
	return regions, nil
}

// ConfigForRegion returns a copy of cfg.Config with Region set to region.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// displayName returns a human-readable profile identifier. An empty string
// (the default profile) is shown as "default".
func displayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// discoverProfileNames reads ~/.aws/credentials and ~/.aws/config and returns
// the deduplicated list of all profile names found.
func discoverProfileNames() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	// ~/.aws/credentials headers are bare profile names; ~/.aws/config
	// prefixes non-default profiles with "profile ".
	credProfiles, err := sectionNames(filepath.Join(home, ".aws", "credentials"), false)
	if err != nil {
		return nil, err
	}
	cfgProfiles, err := sectionNames(filepath.Join(home, ".aws", "config"), true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []string
	for _, name := range append(credProfiles, cfgProfiles...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		all = append(all, name)
	}
	return all, nil
}

// sectionNames scans path for INI section headers ([...]) and returns the
// name from each header. When stripProfilePrefix is true, the "profile "
// prefix used in ~/.aws/config is removed. A missing file yields nil, nil.
func sectionNames(path string, stripProfilePrefix bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			continue
		}
		name := line[1 : len(line)-1]
		if stripProfilePrefix && name != "default" {
			name = strings.TrimPrefix(name, "profile ")
		}
		names = append(names, strings.TrimSpace(name))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return names, nil
}
