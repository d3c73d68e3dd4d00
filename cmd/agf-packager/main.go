package main

import "github.com/oshokin/agf-installer/cmd/agf-packager/cmd"

func main() {
	cmd.Execute()
}
