package main

import "github.com/ppiankov/autogate/internal/cli"

func main() {
	cli.Execute()
}
