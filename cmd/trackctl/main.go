package main

import "github.com/tempslabs/errtrack/internal/cli"

func main() {
	cli.Execute()
}
