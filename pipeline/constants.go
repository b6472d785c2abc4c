package pipeline

const (
	// Event bus topics.
	TopicPendingCycle  = "cycle.pending"
	TopicFinishedCycle = "cycle.finished"

	// Maximum number of posts the one-time initial backfill ingests per
	// (rule, platform) before the scrape state flips to steady polling.
	BackfillCap = 500

	// Page size used while walking backfill pages.
	BackfillPageLimit = 100

	// Page size of the single fetch a steady-state cycle performs. One page
	// per cycle trades completeness for API economy, the poll cadence
	// bounds what can be missed.
	SteadyPageLimit = 100
)

// Cycle trigger origins.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)
