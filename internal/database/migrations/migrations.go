// Package migrations embute o schema SQL das tabelas de inferência para o
// cmd/migrate e para os pipelines que o aplicam automaticamente.
package migrations

import "embed"

//go:embed schema.sql
var Files embed.FS
