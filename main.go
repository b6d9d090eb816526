package main

import "debmatrix/internal/cli"

func main() {
	cli.Execute()
}
