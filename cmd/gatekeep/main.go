// Command gatekeep runs the gatekeep two-plane HTTP reverse proxy.
package main

import "github.com/sentinelgate/gatekeep/cmd/gatekeep/cmd"

func main() {
	cmd.Execute()
}
