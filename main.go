package main

import "github.com/cmmoran/externgen/cmd"

func main() {
	cmd.Execute()
}
