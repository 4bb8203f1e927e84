// Package db carries the embedded database schema
package db

import _ "embed"

// Schema is the idempotent DDL for the payment gateway tables
//
//go:embed schema.sql
var Schema string
