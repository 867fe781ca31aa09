package entities

// VoteRecord is one user's vote on one subject. SubjectID is a post id
// for feed votes and a reply id for reply votes; the fold logic is the
// same for both. Value is +1 or -1; anything else is malformed input
// and is skipped during aggregation.
type VoteRecord struct {
	ID        string
	SubjectID string
	UserID    string
	Value     int
}

// ReactionRecord marks that a user reacted to a post with an emoji.
// Presence of the record is the reaction; there is no payload beyond
// the reaction type.
type ReactionRecord struct {
	ID           string
	PostID       string
	UserID       string
	ReactionType string
}
