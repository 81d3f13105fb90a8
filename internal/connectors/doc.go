// Package connectors provides document sources for the index builder.
// Each connector knows how to enumerate and read documents from one kind
// of location; ragdesk ships a local filesystem connector.
package connectors
