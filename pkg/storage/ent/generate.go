// Package ent holds the generated ent client for the storage schema.
package ent

//go:generate go run -mod=mod entgo.io/ent/cmd/ent generate ./schema
