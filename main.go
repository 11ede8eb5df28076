package main

import "github.com/aviv-k/pr-analytics/cmd"

func main() {
	cmd.Execute()
}
