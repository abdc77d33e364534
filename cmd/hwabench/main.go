package main

import "github.com/hwabench/hwabench/cmd/hwabench/cmd"

func main() {
	cmd.Execute()
}
