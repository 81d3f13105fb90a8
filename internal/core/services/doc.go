// Package services implements the driving ports on top of the driven ports.
//
// The index side is IndexService (rebuild, EnsureFresh, status) with its
// StalenessTracker and the Gateway that holds the active vector store. The
// query side is RetrievalService and SynthesisService, sequenced by
// AnswerService. Refresher drives EnsureFresh from document changes.
//
// Nothing here reads the environment or touches a provider directly.
package services
