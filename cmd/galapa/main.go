package main

import "github.com/mcoot/galapa/internal/cli"

func main() {
	cli.Execute()
}
