// schemafleet is a version-based schema migration tool for a fleet of
// databases.
package main

import "github.com/aqasim81/schema-fleet/internal/cli"

func main() {
	cli.Execute()
}
