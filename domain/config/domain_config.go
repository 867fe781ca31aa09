package config

import "time"

// DomainConfig holds configurable business rules for the feed engine.
type DomainConfig struct {
	// Content constraints
	MaxPostLength  int
	MaxReplyLength int

	// Fetch behavior
	StorePageSize   int
	ReplyPageSize   int
	MaxPostsPerFeed int

	// Session lifecycle
	SessionIdleTimeout time.Duration

	// Policy decisions
	AllowSelfVotes     bool
	AllowSelfReactions bool
}

// DefaultDomainConfig returns the default business rules.
//
// Self-votes and self-reactions are allowed: the store carries no
// authorship check and the product never gated them, so the engine
// makes that an explicit policy here rather than an accident.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxPostLength:  2000,
		MaxReplyLength: 1000,

		StorePageSize:   100,
		ReplyPageSize:   50,
		MaxPostsPerFeed: 1000,

		SessionIdleTimeout: 30 * time.Minute,

		AllowSelfVotes:     true,
		AllowSelfReactions: true,
	}
}
