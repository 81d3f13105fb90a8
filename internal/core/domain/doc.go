// Package domain defines the core entities for ragdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source file read from the document root
//   - Chunk: A bounded passage of a document with its source offset
//   - StalenessMarker: The persisted record of the last successful build
//   - RetrievedPassage and AnswerResult: What the query pipeline returns
//   - Generation: The tagged result of a text-generation call
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
