package main

import "github.com/gkv-io/gkv/cmd"

func main() {
	cmd.Execute()
}
