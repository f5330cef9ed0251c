package main

import "github.com/policykit/policyconv/internal/cli"

func main() {
	cli.Execute()
}
