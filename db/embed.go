// Package db embeds the upstream catalog schema.
package db

import _ "embed"

// Schema is the idempotent DDL for the products table.
//
//go:embed migrations/001_schema.sql
var Schema string
