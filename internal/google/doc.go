// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are stored as one JSON file per account. The TokenProvider interface
// keeps the API clients independent of where tokens come from.
package google
