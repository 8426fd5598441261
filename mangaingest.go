// Package mangaingest ingests series metadata and chapter pages from
// third-party manga sites, normalizes them into a canonical schema, persists
// each record exactly once, and keeps similarity edges and notifications in
// step with new content.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package mangaingest
