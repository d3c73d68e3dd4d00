package main

import "github.com/oshokin/agf-installer/cmd/agf-installer/cmd"

func main() {
	cmd.Execute()
}
