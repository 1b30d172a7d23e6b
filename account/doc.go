// Package account holds the standard account attribute catalogue and ties
// an external account authority to the differential cache.
//
// The authority (Service) owns a subset of keys; everything else an
// integrator declares goes to an optional SecondaryStorage. The Coordinator
// splits incoming details between the two and keeps the cache current, so
// reads are served locally and survive restarts.
package account
