package main

import "github.com/aussiebroadwan/campusgate/cmd/campusgate/cmd"

func main() {
	cmd.Execute()
}
