package main

import "github.com/mcoot/cardboard/internal/cli"

func main() {
	cli.Execute()
}
