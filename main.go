package main

import "github.com/devicelab-dev/cypress-report/pkg/cli"

func main() {
	cli.Execute()
}
