// Command navctl is the navigator's command-line front end: it dials
// (or spawns) the per-project daemon and exposes symbol search, hybrid
// retrieval, and reindexing from the terminal.
package main

import "github.com/codenav/navcore/internal/cli"

func main() {
	cli.Execute()
}
