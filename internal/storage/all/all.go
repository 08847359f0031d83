// Package all registers every built-in storage backend with the factory.
// Blank-import it from binaries that select a backend via config.
package all

import (
	_ "github.com/akshay-rajan/adventureworks/internal/storage/mssql"
	_ "github.com/akshay-rajan/adventureworks/internal/storage/postgres"
	_ "github.com/akshay-rajan/adventureworks/internal/storage/sqlite"
)
