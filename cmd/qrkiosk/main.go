package main

import "github.com/mcoot/qrkiosk/internal/cli"

func main() {
	cli.Execute()
}
