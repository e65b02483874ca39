// postgate — publishing gate for autonomous agents.
package main

import "github.com/agenium/postgate/internal/cli"

func main() {
	cli.Execute()
}
