package main

import (
	"github.com/francois-poidevin/sondetracker/cli/cmd"
)

func main() {
	cmd.Execute()
}
