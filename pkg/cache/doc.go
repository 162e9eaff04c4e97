// Package cache provides the two-tier caching layer of the engine.
//
// EnfoldCache mirrors a primary Storage into a faster cache Storage behind
// the same contract: writes go through to both tiers, reads are served from
// the cache tier when it has an answer. GuardCache memoizes FindForInquiry
// results per (inquiry, checker) with explicit staleness control, and
// Refresher re-warms the cache tier on a cron schedule for deployments
// where other writers mutate the primary store directly.
package cache
