package main

import "github.com/kfrantz/bssncosmo/cmd"

func main() {
	cmd.Execute()
}
