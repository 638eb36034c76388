package main

import "github.com/ou-cs3560/team-commits/cmd"

func main() {
	cmd.Execute()
}
