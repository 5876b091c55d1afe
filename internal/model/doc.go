// Package model defines the data structures shared by the automation engine.
//
// This package contains the following main types:
//   - SessionCredential: harvested browser cookies identifying one account
//   - DiscoveredProfile: a normalized profile found by a crawl or keyword search
//   - MediaRecord: canonical post metadata produced by the media resolver
//   - MessageResult: outcome of a single direct message send attempt
//   - ErrorKind and Failure: the closed failure taxonomy used across packages
//
// Models live in their own package so that session, messaging, discovery,
// search, media and report can share them without import cycles. All types
// serialize to JSON for CLI output and for external persistence layers.
package model
