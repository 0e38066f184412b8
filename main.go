package main

import "github.com/jtodic/rustc-bisect/cmd"

func main() {
	cmd.Execute()
}
