package main

import "github.com/libraz/midi-sketch-sub003/cmd"

func main() {
	cmd.Execute()
}
