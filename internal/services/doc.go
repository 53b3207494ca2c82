// Package services holds cross-cutting helpers shared by the components that
// talk to external systems.
//
// It defines the sentinel error markers used to classify failures (validation,
// configuration, timeout, transient, external service) and context annotation
// helpers so log lines and error reports can carry queue item IDs, platforms,
// and correlation IDs without plumbing extra parameters everywhere.
package services
