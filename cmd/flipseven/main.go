package main

import "github.com/mcoot/flipseven-go/internal/cli"

func main() {
	cli.Execute()
}
