package main

import "github.com/oshokin/app-bundler/cmd/bundler-create/cmd"

func main() {
	cmd.Execute()
}
