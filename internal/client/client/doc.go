// Package client contains the CLI's connection to the starterkit backend.
//
// # Overview
//
//  1. Client is the account API contract: sign-up, sign-in, sign-out, email
//     verification, password reset, email change, avatar upload URLs and the
//     current profile.
//  2. GRPCClient implements it over the JSON-coded AccountService. A unary
//     interceptor injects the access token and, when the server reports
//     "token expired", refreshes the session once and retries the call.
//     Fresh tokens are handed to the OnTokens hook so they can be persisted.
//  3. InitDatabase and RunMigrations open the local sqlite database and apply
//     the embedded goose migrations.
//
// # Error Handling
//
// Transport conditions surface as ErrUnavailable and ErrUnauthorized. Server
// messages that match a sentinel from package common are returned as that
// sentinel, so errors.Is works across the wire.
package client
