package main

import "connwatch/internals/cli"

func main() {
	cli.Execute()
}
