// Package domain contains the core model of the build health analyzer.
//
// The domain is transport- and persistence-agnostic: it does not depend on XML parsing,
// net/http, SQLite or the filesystem. Infra/adapters map into/from these types.
package domain
