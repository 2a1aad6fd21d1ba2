package main

import "github.com/naka-gawa/top-issues/cmd"

func main() {
	cmd.Execute()
}
