package main

import "github.com/Tiliavir/arbeitszeit/cmd"

func main() {
	cmd.Execute()
}
