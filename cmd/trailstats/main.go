package main

import "github.com/planbiir/trailstats/cmd/trailstats/cmd"

func main() {
	cmd.Execute()
}
