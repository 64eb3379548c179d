package config

// DomainConfig holds tunable domain rules for the history engine.
// A nil config always falls back to DefaultDomainConfig.
type DomainConfig struct {
	// MaxHistorySize bounds the total number of stored history nodes.
	// The retention policy evicts the oldest nodes beyond this bound.
	MaxHistorySize int

	// MaxTagsPerNode bounds user annotations on a single node
	MaxTagsPerNode int

	// MaxBranches bounds the number of named branches in the registry
	MaxBranches int

	// MaxDescriptionLength bounds node and branch descriptions
	MaxDescriptionLength int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxHistorySize:       200,
		MaxTagsPerNode:       10,
		MaxBranches:          50,
		MaxDescriptionLength: 500,
	}
}
